// ABOUTME: Prompt registry for the gateway's parameterized message templates.
// ABOUTME: Holds the runtime-fed init prompt and the swappable template dir.

package prompts

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/admjs/obsidian-mcp/internal/tools"
)

// ErrPromptNotFound indicates the named prompt is not registered.
var ErrPromptNotFound = errors.New("prompt not found")

// InitPromptName is the system-context prompt clients fetch first.
const InitPromptName = "init"

// Prompt describes a named, parameterized static message template.
type Prompt struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Arguments   []Argument `json:"arguments,omitempty"`
}

// Argument describes one prompt parameter.
type Argument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Message is one message produced by a prompt.
type Message struct {
	Role    string        `json:"role"`
	Content tools.Content `json:"content"`
}

// GetResult is the response for a prompt fetch.
type GetResult struct {
	Description string    `json:"description,omitempty"`
	Messages    []Message `json:"messages"`
}

// Registry holds the prompt set. The init prompt body comes from a
// runtime-supplied getter so the caller can swap the system prompt without
// re-registering anything; the template directory is likewise mutable.
type Registry struct {
	mu           sync.RWMutex
	systemPrompt func() string
	templateDir  string
	logger       *slog.Logger
}

// NewRegistry creates an empty prompt registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// SetSystemPrompt installs the getter backing the init prompt.
// Takes effect on the next fetch.
func (r *Registry) SetSystemPrompt(get func() string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.systemPrompt = get
}

// SetTemplateDir updates the template directory path.
func (r *Registry) SetTemplateDir(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templateDir = dir
}

// TemplateDir returns the current template directory path.
func (r *Registry) TemplateDir() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.templateDir
}

// List returns the available prompts.
func (r *Registry) List() []Prompt {
	return []Prompt{
		{
			Name:        InitPromptName,
			Description: "System context for working with this vault. Fetch this before calling any tools.",
		},
	}
}

// Get resolves a prompt by name. Unknown names fail with ErrPromptNotFound.
func (r *Registry) Get(name string) (*GetResult, error) {
	if name != InitPromptName {
		return nil, ErrPromptNotFound
	}

	r.mu.RLock()
	get := r.systemPrompt
	r.mu.RUnlock()

	body := ""
	if get != nil {
		body = get()
	}

	return &GetResult{
		Description: "System context for working with this vault.",
		Messages: []Message{
			{Role: "user", Content: tools.TextContent(body)},
		},
	}, nil
}

// ABOUTME: Template tools over the configurable template directory.
// ABOUTME: The directory path is read from the prompt registry at call time.

package builtins

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/admjs/obsidian-mcp/internal/prompts"
	"github.com/admjs/obsidian-mcp/internal/tools"
	"github.com/admjs/obsidian-mcp/internal/vault"
)

// TemplateTools creates tools for browsing and reading note templates.
// The template directory lives on the prompt registry so runtime
// reconfiguration is picked up without re-registering handlers.
func TemplateTools(v *vault.Vault, pr *prompts.Registry) []*tools.Tool {
	h := &templateHandlers{vault: v, prompts: pr}
	return []*tools.Tool{
		{
			Descriptor: tools.Descriptor{
				Name:        "list_templates",
				Description: "List available note templates",
				InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
			},
			Handler: h.List,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "read_template",
				Description: "Read the content of a note template",
				InputSchema: json.RawMessage(`{"type":"object","properties":{"name":{"type":"string"}},"required":["name"]}`),
			},
			Handler: h.Read,
		},
	}
}

type templateHandlers struct {
	vault   *vault.Vault
	prompts *prompts.Registry
}

func (h *templateHandlers) List(ctx context.Context, input json.RawMessage) ([]tools.Content, error) {
	dir := h.prompts.TemplateDir()
	if dir == "" {
		c, err := tools.JSONContent(map[string]any{"templates": []string{}, "count": 0})
		if err != nil {
			return nil, err
		}
		return []tools.Content{c}, nil
	}

	entries, err := h.vault.List(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.Kind == vault.KindFile {
			names = append(names, e.Path)
		}
	}
	if names == nil {
		names = []string{}
	}

	c, err := tools.JSONContent(map[string]any{"templates": names, "count": len(names)})
	if err != nil {
		return nil, err
	}
	return []tools.Content{c}, nil
}

type readTemplateInput struct {
	Name string `json:"name"`
}

func (h *templateHandlers) Read(ctx context.Context, input json.RawMessage) ([]tools.Content, error) {
	var in readTemplateInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", tools.ErrInvalidInput, err)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", tools.ErrInvalidInput)
	}

	dir := h.prompts.TemplateDir()
	if dir == "" {
		return nil, fmt.Errorf("template directory is not configured")
	}

	content, err := h.vault.Read(dir + "/" + in.Name)
	if err != nil {
		return nil, err
	}
	return []tools.Content{tools.TextContent(content)}, nil
}

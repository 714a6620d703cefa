// ABOUTME: Thread-safe registry and dispatcher for gateway tools.
// ABOUTME: Manages registration, descriptor listing, and invocation by name.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ErrToolNotFound indicates the named tool is not registered.
var ErrToolNotFound = errors.New("tool not found")

// Registry maintains the set of registered tools keyed by name.
// Enumeration order is registration order. Registering a name twice
// replaces the handler in place (last write wins).
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]*Tool
	order  []string
	logger *slog.Logger
}

// NewRegistry creates a new Registry instance.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]*Tool),
		logger: logger,
	}
}

// Register adds a tool under its descriptor name. If the name is already
// registered the tool is replaced but keeps its original position in the
// enumeration order.
func (r *Registry) Register(t *Tool) {
	name := t.Descriptor.Name

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		r.logger.Warn("tool re-registered, replacing handler", "tool", name)
	} else {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// RegisterAll registers a batch of tools in order.
func (r *Registry) RegisterAll(ts []*Tool) {
	for _, t := range ts {
		r.Register(t)
	}
}

// Get returns the tool registered under name, or nil.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// List returns descriptors for all registered tools in registration order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		descriptors = append(descriptors, r.tools[name].Descriptor)
	}
	return descriptors
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Call looks up the tool by exact name and delegates to its handler.
// Returns ErrToolNotFound for unknown names. Handler failures are logged
// with the tool name and request ID, then returned unchanged so validation
// messages reach the client verbatim.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) ([]Content, error) {
	tool := r.Get(name)
	if tool == nil {
		return nil, ErrToolNotFound
	}

	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}

	requestID := uuid.New().String()
	r.logger.Debug("tool call", "tool", name, "request_id", requestID)

	result, err := tool.Handler(ctx, args)
	if err != nil {
		r.logger.Warn("tool call failed",
			"tool", name,
			"request_id", requestID,
			"error", err,
		)
		return nil, err
	}

	if result == nil {
		result = []Content{}
	}

	r.logger.Debug("tool call complete",
		"tool", name,
		"request_id", requestID,
		"content_items", len(result),
	)
	return result, nil
}

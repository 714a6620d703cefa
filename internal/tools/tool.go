// ABOUTME: Tool handler model for operations that execute in the gateway process.
// ABOUTME: Each tool pairs a wire descriptor with its invocation function.

package tools

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrInvalidInput indicates the tool arguments failed validation.
// Handlers wrap it with a human-readable description of the missing or
// malformed field; the message is propagated verbatim to the client.
var ErrInvalidInput = errors.New("invalid input")

// Handler executes a tool. It receives the raw JSON arguments object and
// returns an ordered sequence of content items.
type Handler func(ctx context.Context, input json.RawMessage) ([]Content, error)

// Descriptor describes a tool for client capability discovery.
// Immutable once registered.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// Tool pairs a descriptor with its handler.
type Tool struct {
	Descriptor Descriptor
	Handler    Handler
}

// ABOUTME: The initialization tool clients are asked to call first.
// ABOUTME: Returns usage instructions built from the runtime system prompt.

package builtins

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/admjs/obsidian-mcp/internal/prompts"
	"github.com/admjs/obsidian-mcp/internal/tools"
)

// InstructionTools creates the get_instructions tool. Call ordering is a
// client-side convention carried in the description text; the dispatcher
// does not enforce it.
func InstructionTools(pr *prompts.Registry) []*tools.Tool {
	h := &instructionHandlers{prompts: pr}
	return []*tools.Tool{
		{
			Descriptor: tools.Descriptor{
				Name:        "get_instructions",
				Description: "IMPORTANT: call this tool before any other tool to receive usage instructions and vault conventions",
				InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
			},
			Handler: h.Get,
		},
	}
}

type instructionHandlers struct {
	prompts *prompts.Registry
}

func (h *instructionHandlers) Get(ctx context.Context, input json.RawMessage) ([]tools.Content, error) {
	result, err := h.prompts.Get(prompts.InitPromptName)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, m := range result.Messages {
		b.WriteString(m.Content.Text)
	}
	text := b.String()
	if text == "" {
		text = "No vault instructions are configured. Use the note and search tools directly."
	}

	return []tools.Content{tools.TextContent(text)}, nil
}

// ABOUTME: Search tools: full-text vault scan, tag lookup, and vault stats.
// ABOUTME: Wraps the search engine and the metadata index as tool handlers.

package builtins

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/admjs/obsidian-mcp/internal/index"
	"github.com/admjs/obsidian-mcp/internal/search"
	"github.com/admjs/obsidian-mcp/internal/tools"
)

// SearchTools creates the search tool set over the engine and index.
func SearchTools(engine *search.Engine, ix *index.Index) []*tools.Tool {
	h := &searchHandlers{engine: engine, index: ix}
	return []*tools.Tool{
		{
			Descriptor: tools.Descriptor{
				Name:        "search_vault",
				Description: "Full-text search across all notes in the vault",
				InputSchema: json.RawMessage(`{"type":"object","properties":{"query":{"type":"string"},"context_length":{"type":"integer","default":100},"max_results":{"type":"integer","default":20},"max_files":{"type":"integer","default":500}},"required":["query"]}`),
			},
			Handler: h.SearchVault,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "search_by_tag",
				Description: "Find notes carrying a given tag",
				InputSchema: json.RawMessage(`{"type":"object","properties":{"tag":{"type":"string","description":"Tag name, with or without the leading #"}},"required":["tag"]}`),
			},
			Handler: h.SearchByTag,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "vault_stats",
				Description: "Summary statistics for the vault: note and tag counts",
				InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
			},
			Handler: h.Stats,
		},
	}
}

type searchHandlers struct {
	engine *search.Engine
	index  *index.Index
}

type searchVaultInput struct {
	Query         string `json:"query"`
	ContextLength int    `json:"context_length"`
	MaxResults    int    `json:"max_results"`
	MaxFiles      int    `json:"max_files"`
}

func (h *searchHandlers) SearchVault(ctx context.Context, input json.RawMessage) ([]tools.Content, error) {
	var in searchVaultInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", tools.ErrInvalidInput, err)
	}

	out, err := h.engine.Search(ctx, search.Options{
		Query:         in.Query,
		ContextLength: in.ContextLength,
		MaxResults:    in.MaxResults,
		MaxFiles:      in.MaxFiles,
	})
	if err != nil {
		return nil, err
	}

	c, err := tools.JSONContent(out)
	if err != nil {
		return nil, err
	}
	return []tools.Content{c}, nil
}

type searchByTagInput struct {
	Tag string `json:"tag"`
}

func (h *searchHandlers) SearchByTag(ctx context.Context, input json.RawMessage) ([]tools.Content, error) {
	var in searchByTagInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", tools.ErrInvalidInput, err)
	}
	if in.Tag == "" {
		return nil, fmt.Errorf("%w: tag is required", tools.ErrInvalidInput)
	}

	paths, err := h.index.NotesWithTag(ctx, in.Tag)
	if err != nil {
		return nil, err
	}
	if paths == nil {
		paths = []string{}
	}

	c, err := tools.JSONContent(map[string]any{"tag": in.Tag, "notes": paths, "count": len(paths)})
	if err != nil {
		return nil, err
	}
	return []tools.Content{c}, nil
}

func (h *searchHandlers) Stats(ctx context.Context, input json.RawMessage) ([]tools.Content, error) {
	stats, err := h.index.Stats(ctx)
	if err != nil {
		return nil, err
	}

	c, err := tools.JSONContent(stats)
	if err != nil {
		return nil, err
	}
	return []tools.Content{c}, nil
}

// ABOUTME: Tests for the tool registry covering registration, listing, and dispatch.
// ABOUTME: Validates ordering, last-write-wins replacement, and unknown-tool errors.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

// createTestTool creates a Tool whose handler returns a single text item.
func createTestTool(name, reply string) *Tool {
	return &Tool{
		Descriptor: Descriptor{
			Name:        name,
			Description: name + " description",
			InputSchema: json.RawMessage(`{"type":"object"}`),
		},
		Handler: func(ctx context.Context, input json.RawMessage) ([]Content, error) {
			return []Content{TextContent(reply)}, nil
		},
	}
}

func TestRegistryRegister(t *testing.T) {
	t.Run("lists tools in registration order", func(t *testing.T) {
		registry := NewRegistry(slog.Default())
		registry.Register(createTestTool("charlie", "c"))
		registry.Register(createTestTool("alpha", "a"))
		registry.Register(createTestTool("bravo", "b"))

		descriptors := registry.List()
		if len(descriptors) != 3 {
			t.Fatalf("expected 3 descriptors, got %d", len(descriptors))
		}
		want := []string{"charlie", "alpha", "bravo"}
		for i, name := range want {
			if descriptors[i].Name != name {
				t.Errorf("position %d: expected %q, got %q", i, name, descriptors[i].Name)
			}
		}
	})

	t.Run("duplicate name replaces handler in place", func(t *testing.T) {
		registry := NewRegistry(slog.Default())
		registry.Register(createTestTool("first", "old"))
		registry.Register(createTestTool("second", "s"))
		registry.Register(createTestTool("first", "new"))

		descriptors := registry.List()
		if len(descriptors) != 2 {
			t.Fatalf("expected 2 descriptors after overwrite, got %d", len(descriptors))
		}
		if descriptors[0].Name != "first" {
			t.Errorf("overwrite moved the tool: got %q at position 0", descriptors[0].Name)
		}

		content, err := registry.Call(context.Background(), "first", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if content[0].Text != "new" {
			t.Errorf("expected replacement handler output 'new', got %q", content[0].Text)
		}
	})

	t.Run("every listed tool is callable", func(t *testing.T) {
		registry := NewRegistry(slog.Default())
		registry.Register(createTestTool("one", "1"))
		registry.Register(createTestTool("two", "2"))

		for _, d := range registry.List() {
			if _, err := registry.Call(context.Background(), d.Name, json.RawMessage(`{}`)); err != nil {
				t.Errorf("tool %q listed but not callable: %v", d.Name, err)
			}
		}
	})
}

func TestRegistryCall(t *testing.T) {
	t.Run("unknown tool fails with ErrToolNotFound", func(t *testing.T) {
		registry := NewRegistry(slog.Default())

		_, err := registry.Call(context.Background(), "nonexistent", json.RawMessage(`{}`))
		if !errors.Is(err, ErrToolNotFound) {
			t.Fatalf("expected ErrToolNotFound, got %v", err)
		}
	})

	t.Run("handler errors propagate unchanged", func(t *testing.T) {
		registry := NewRegistry(slog.Default())
		wantErr := errors.New("query is required")
		registry.Register(&Tool{
			Descriptor: Descriptor{Name: "failing"},
			Handler: func(ctx context.Context, input json.RawMessage) ([]Content, error) {
				return nil, wantErr
			},
		})

		_, err := registry.Call(context.Background(), "failing", nil)
		if !errors.Is(err, wantErr) {
			t.Fatalf("expected handler error to propagate, got %v", err)
		}
	})

	t.Run("nil arguments become empty object", func(t *testing.T) {
		registry := NewRegistry(slog.Default())
		var got string
		registry.Register(&Tool{
			Descriptor: Descriptor{Name: "echo-args"},
			Handler: func(ctx context.Context, input json.RawMessage) ([]Content, error) {
				got = string(input)
				return nil, nil
			},
		})

		content, err := registry.Call(context.Background(), "echo-args", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "{}" {
			t.Errorf("expected handler to receive {}, got %q", got)
		}
		if content == nil || len(content) != 0 {
			t.Errorf("expected empty non-nil content, got %#v", content)
		}
	})
}

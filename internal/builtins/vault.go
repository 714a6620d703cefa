// ABOUTME: Note tools operating on the vault store.
// ABOUTME: Read, create, append, delete, list, and stat individual notes.

package builtins

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/admjs/obsidian-mcp/internal/index"
	"github.com/admjs/obsidian-mcp/internal/tools"
	"github.com/admjs/obsidian-mcp/internal/vault"
)

// VaultTools creates the note manipulation tool set over the vault. The
// write tools keep ix in step with the notes they touch.
func VaultTools(v *vault.Vault, ix *index.Index) []*tools.Tool {
	h := &vaultHandlers{vault: v, index: ix}
	return []*tools.Tool{
		{
			Descriptor: tools.Descriptor{
				Name:        "read_note",
				Description: "Read the content of a note in the vault",
				InputSchema: json.RawMessage(`{"type":"object","properties":{"path":{"type":"string","description":"Vault-relative path to the note"}},"required":["path"]}`),
			},
			Handler: h.Read,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "create_note",
				Description: "Create a new note, optionally overwriting an existing one",
				InputSchema: json.RawMessage(`{"type":"object","properties":{"path":{"type":"string"},"content":{"type":"string"},"overwrite":{"type":"boolean"}},"required":["path","content"]}`),
			},
			Handler: h.Create,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "append_to_note",
				Description: "Append content to a note, creating it if absent",
				InputSchema: json.RawMessage(`{"type":"object","properties":{"path":{"type":"string"},"content":{"type":"string"}},"required":["path","content"]}`),
			},
			Handler: h.Append,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "delete_note",
				Description: "Delete a note from the vault",
				InputSchema: json.RawMessage(`{"type":"object","properties":{"path":{"type":"string"}},"required":["path"]}`),
			},
			Handler: h.Delete,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "list_notes",
				Description: "List notes and folders in a vault directory",
				InputSchema: json.RawMessage(`{"type":"object","properties":{"dir":{"type":"string","description":"Directory to list; omit for the vault root"}}}`),
			},
			Handler: h.List,
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "get_note_info",
				Description: "Get size and modification time for a note",
				InputSchema: json.RawMessage(`{"type":"object","properties":{"path":{"type":"string"}},"required":["path"]}`),
			},
			Handler: h.Info,
		},
	}
}

type vaultHandlers struct {
	vault *vault.Vault
	index *index.Index
}

// isMarkdown reports whether path is a note the index tracks. Rebuild
// only enumerates .md files, so the write tools index the same set.
func isMarkdown(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".md")
}

type readNoteInput struct {
	Path string `json:"path"`
}

func (h *vaultHandlers) Read(ctx context.Context, input json.RawMessage) ([]tools.Content, error) {
	var in readNoteInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", tools.ErrInvalidInput, err)
	}
	if in.Path == "" {
		return nil, fmt.Errorf("%w: path is required", tools.ErrInvalidInput)
	}

	content, err := h.vault.CachedRead(in.Path)
	if err != nil {
		return nil, err
	}
	return []tools.Content{tools.TextContent(content)}, nil
}

type createNoteInput struct {
	Path      string `json:"path"`
	Content   string `json:"content"`
	Overwrite bool   `json:"overwrite"`
}

func (h *vaultHandlers) Create(ctx context.Context, input json.RawMessage) ([]tools.Content, error) {
	var in createNoteInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", tools.ErrInvalidInput, err)
	}
	if in.Path == "" {
		return nil, fmt.Errorf("%w: path is required", tools.ErrInvalidInput)
	}
	if in.Content == "" {
		return nil, fmt.Errorf("%w: content is required", tools.ErrInvalidInput)
	}

	if err := h.vault.Write(in.Path, in.Content, in.Overwrite); err != nil {
		return nil, err
	}
	if isMarkdown(in.Path) {
		if err := h.index.IndexNote(ctx, in.Path, in.Content); err != nil {
			return nil, fmt.Errorf("indexing %s: %w", in.Path, err)
		}
	}

	c, err := tools.JSONContent(map[string]string{"path": in.Path, "status": "created"})
	if err != nil {
		return nil, err
	}
	return []tools.Content{c}, nil
}

type appendNoteInput struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (h *vaultHandlers) Append(ctx context.Context, input json.RawMessage) ([]tools.Content, error) {
	var in appendNoteInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", tools.ErrInvalidInput, err)
	}
	if in.Path == "" {
		return nil, fmt.Errorf("%w: path is required", tools.ErrInvalidInput)
	}
	if in.Content == "" {
		return nil, fmt.Errorf("%w: content is required", tools.ErrInvalidInput)
	}

	if err := h.vault.Append(in.Path, in.Content); err != nil {
		return nil, err
	}
	if isMarkdown(in.Path) {
		content, err := h.vault.CachedRead(in.Path)
		if err != nil {
			return nil, fmt.Errorf("re-reading %s for indexing: %w", in.Path, err)
		}
		if err := h.index.IndexNote(ctx, in.Path, content); err != nil {
			return nil, fmt.Errorf("indexing %s: %w", in.Path, err)
		}
	}

	c, err := tools.JSONContent(map[string]string{"path": in.Path, "status": "appended"})
	if err != nil {
		return nil, err
	}
	return []tools.Content{c}, nil
}

type deleteNoteInput struct {
	Path string `json:"path"`
}

func (h *vaultHandlers) Delete(ctx context.Context, input json.RawMessage) ([]tools.Content, error) {
	var in deleteNoteInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", tools.ErrInvalidInput, err)
	}
	if in.Path == "" {
		return nil, fmt.Errorf("%w: path is required", tools.ErrInvalidInput)
	}

	if err := h.vault.Delete(in.Path); err != nil {
		return nil, err
	}
	if isMarkdown(in.Path) {
		if err := h.index.RemoveNote(ctx, in.Path); err != nil {
			return nil, err
		}
	}

	c, err := tools.JSONContent(map[string]string{"path": in.Path, "status": "deleted"})
	if err != nil {
		return nil, err
	}
	return []tools.Content{c}, nil
}

type listNotesInput struct {
	Dir string `json:"dir"`
}

func (h *vaultHandlers) List(ctx context.Context, input json.RawMessage) ([]tools.Content, error) {
	var in listNotesInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", tools.ErrInvalidInput, err)
	}

	entries, err := h.vault.List(in.Dir)
	if err != nil {
		return nil, err
	}

	c, err := tools.JSONContent(map[string]any{"entries": entries, "count": len(entries)})
	if err != nil {
		return nil, err
	}
	return []tools.Content{c}, nil
}

type noteInfoInput struct {
	Path string `json:"path"`
}

func (h *vaultHandlers) Info(ctx context.Context, input json.RawMessage) ([]tools.Content, error) {
	var in noteInfoInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", tools.ErrInvalidInput, err)
	}
	if in.Path == "" {
		return nil, fmt.Errorf("%w: path is required", tools.ErrInvalidInput)
	}

	entry, err := h.vault.Stat(in.Path)
	if err != nil {
		return nil, err
	}

	c, err := tools.JSONContent(entry)
	if err != nil {
		return nil, err
	}
	return []tools.Content{c}, nil
}

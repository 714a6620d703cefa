// ABOUTME: End-to-end tests for the builtin tools through the registry.
// ABOUTME: Runs against a real temp vault, search engine, and index.

package builtins

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admjs/obsidian-mcp/internal/index"
	"github.com/admjs/obsidian-mcp/internal/prompts"
	"github.com/admjs/obsidian-mcp/internal/search"
	"github.com/admjs/obsidian-mcp/internal/tools"
	"github.com/admjs/obsidian-mcp/internal/vault"
)

type fixture struct {
	registry *tools.Registry
	vault    *vault.Vault
	index    *index.Index
	prompts  *prompts.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{
		"daily.md":            "# Daily\nMeeting notes about the quarterly review. #work\n",
		"projects/gateway.md": "# Gateway\nProtocol bridge design. #work #design\n",
		"recipes/soup.md":     "# Soup\nA recipe with no tags.\n",
		"prompts/meeting.md":  "## {{date}} Meeting\n- Attendees:\n",
	}
	for path, content := range files {
		full := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	v, err := vault.Open(root, nil)
	require.NoError(t, err)

	ix, err := index.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	require.NoError(t, ix.Rebuild(context.Background(), v))

	pr := prompts.NewRegistry(nil)
	pr.SetTemplateDir("prompts")
	pr.SetSystemPrompt(func() string { return "vault conventions go here" })

	reg := tools.NewRegistry(nil)
	RegisterAll(reg, v, search.New(v, nil), ix, pr)

	return &fixture{registry: reg, vault: v, index: ix, prompts: pr}
}

// call invokes a tool through the registry and returns its content.
func (f *fixture) call(t *testing.T, name string, args any) []tools.Content {
	t.Helper()
	var raw json.RawMessage
	if args != nil {
		data, err := json.Marshal(args)
		require.NoError(t, err)
		raw = data
	}
	content, err := f.registry.Call(context.Background(), name, raw)
	require.NoError(t, err)
	return content
}

// jsonResult decodes the first content item's text as a JSON object.
func jsonResult(t *testing.T, content []tools.Content) map[string]any {
	t.Helper()
	require.NotEmpty(t, content)
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(content[0].Text), &m))
	return m
}

func TestRegisteredToolSet(t *testing.T) {
	f := newFixture(t)

	var names []string
	for _, d := range f.registry.List() {
		names = append(names, d.Name)
	}

	assert.Equal(t, []string{
		"get_instructions",
		"read_note",
		"create_note",
		"append_to_note",
		"delete_note",
		"list_notes",
		"get_note_info",
		"search_vault",
		"search_by_tag",
		"vault_stats",
		"list_templates",
		"read_template",
	}, names, "get_instructions leads the listing")
}

func TestGetInstructions(t *testing.T) {
	f := newFixture(t)

	content := f.call(t, "get_instructions", nil)
	require.Len(t, content, 1)
	assert.Equal(t, "vault conventions go here", content[0].Text)
}

func TestGetInstructionsFallback(t *testing.T) {
	f := newFixture(t)
	f.prompts.SetSystemPrompt(func() string { return "" })

	content := f.call(t, "get_instructions", nil)
	assert.Contains(t, content[0].Text, "No vault instructions are configured")
}

func TestReadNote(t *testing.T) {
	f := newFixture(t)

	content := f.call(t, "read_note", map[string]string{"path": "daily.md"})
	assert.Contains(t, content[0].Text, "quarterly review")

	t.Run("missing path", func(t *testing.T) {
		_, err := f.registry.Call(context.Background(), "read_note", json.RawMessage(`{}`))
		assert.ErrorIs(t, err, tools.ErrInvalidInput)
	})

	t.Run("absent note", func(t *testing.T) {
		_, err := f.registry.Call(context.Background(), "read_note",
			json.RawMessage(`{"path":"nope.md"}`))
		assert.ErrorIs(t, err, vault.ErrNotFound)
	})
}

func TestCreateAppendDelete(t *testing.T) {
	f := newFixture(t)

	result := jsonResult(t, f.call(t, "create_note",
		map[string]any{"path": "new.md", "content": "# New\n"}))
	assert.Equal(t, "created", result["status"])

	t.Run("existing note needs overwrite", func(t *testing.T) {
		_, err := f.registry.Call(context.Background(), "create_note",
			json.RawMessage(`{"path":"new.md","content":"other"}`))
		assert.ErrorIs(t, err, vault.ErrAlreadyExists)

		result := jsonResult(t, f.call(t, "create_note",
			map[string]any{"path": "new.md", "content": "replaced", "overwrite": true}))
		assert.Equal(t, "created", result["status"])
	})

	result = jsonResult(t, f.call(t, "append_to_note",
		map[string]any{"path": "new.md", "content": "\nmore"}))
	assert.Equal(t, "appended", result["status"])

	content := f.call(t, "read_note", map[string]string{"path": "new.md"})
	assert.Equal(t, "replaced\nmore", content[0].Text)

	result = jsonResult(t, f.call(t, "delete_note", map[string]string{"path": "new.md"}))
	assert.Equal(t, "deleted", result["status"])

	_, err := f.registry.Call(context.Background(), "read_note",
		json.RawMessage(`{"path":"new.md"}`))
	assert.ErrorIs(t, err, vault.ErrNotFound)
}

func TestListNotes(t *testing.T) {
	f := newFixture(t)

	t.Run("root", func(t *testing.T) {
		result := jsonResult(t, f.call(t, "list_notes", nil))
		assert.EqualValues(t, 4, result["count"], "three directories plus daily.md")
	})

	t.Run("subdirectory", func(t *testing.T) {
		result := jsonResult(t, f.call(t, "list_notes", map[string]string{"dir": "projects"}))
		assert.EqualValues(t, 1, result["count"])
	})
}

func TestGetNoteInfo(t *testing.T) {
	f := newFixture(t)

	result := jsonResult(t, f.call(t, "get_note_info", map[string]string{"path": "daily.md"}))
	assert.Equal(t, "daily.md", result["path"])
	assert.Equal(t, "file", result["kind"])
}

func TestSearchVaultTool(t *testing.T) {
	f := newFixture(t)

	result := jsonResult(t, f.call(t, "search_vault", map[string]string{"query": "recipe"}))
	summary, ok := result["summary"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, summary["total_results"])

	t.Run("query required", func(t *testing.T) {
		_, err := f.registry.Call(context.Background(), "search_vault", json.RawMessage(`{}`))
		assert.ErrorIs(t, err, tools.ErrInvalidInput)
	})
}

func TestSearchByTag(t *testing.T) {
	f := newFixture(t)

	result := jsonResult(t, f.call(t, "search_by_tag", map[string]string{"tag": "work"}))
	assert.EqualValues(t, 2, result["count"])

	t.Run("hash prefix accepted", func(t *testing.T) {
		result := jsonResult(t, f.call(t, "search_by_tag", map[string]string{"tag": "#design"}))
		assert.EqualValues(t, 1, result["count"])
	})

	t.Run("unknown tag is empty, not an error", func(t *testing.T) {
		result := jsonResult(t, f.call(t, "search_by_tag", map[string]string{"tag": "absent"}))
		assert.EqualValues(t, 0, result["count"])
	})
}

func TestIndexFollowsWrites(t *testing.T) {
	f := newFixture(t)

	tagCount := func(tag string) any {
		return jsonResult(t, f.call(t, "search_by_tag", map[string]string{"tag": tag}))["count"]
	}

	f.call(t, "create_note", map[string]any{"path": "fresh.md", "content": "# Fresh\n#fresh\n"})
	assert.EqualValues(t, 1, tagCount("fresh"), "created note is queryable without a rebuild")

	f.call(t, "append_to_note", map[string]any{"path": "fresh.md", "content": "#extra\n"})
	assert.EqualValues(t, 1, tagCount("extra"), "appended tags are picked up")
	assert.EqualValues(t, 1, tagCount("fresh"))

	f.call(t, "delete_note", map[string]string{"path": "fresh.md"})
	assert.EqualValues(t, 0, tagCount("fresh"), "deleted note leaves no tag entries")
	assert.EqualValues(t, 0, tagCount("extra"))

	stats := jsonResult(t, f.call(t, "vault_stats", nil))
	assert.EqualValues(t, 4, stats["note_count"], "note count back to the fixture set")
}

func TestVaultStats(t *testing.T) {
	f := newFixture(t)

	result := jsonResult(t, f.call(t, "vault_stats", nil))
	assert.EqualValues(t, 4, result["note_count"])
}

func TestTemplates(t *testing.T) {
	f := newFixture(t)

	t.Run("list", func(t *testing.T) {
		result := jsonResult(t, f.call(t, "list_templates", nil))
		assert.EqualValues(t, 1, result["count"])
	})

	t.Run("read", func(t *testing.T) {
		content := f.call(t, "read_template", map[string]string{"name": "meeting.md"})
		assert.Contains(t, content[0].Text, "{{date}}")
	})

	t.Run("unconfigured directory", func(t *testing.T) {
		f.prompts.SetTemplateDir("")
		defer f.prompts.SetTemplateDir("prompts")

		result := jsonResult(t, f.call(t, "list_templates", nil))
		assert.EqualValues(t, 0, result["count"])

		_, err := f.registry.Call(context.Background(), "read_template",
			json.RawMessage(`{"name":"meeting.md"}`))
		assert.Error(t, err)
	})
}

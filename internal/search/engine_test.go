// ABOUTME: Tests for the batched search engine.
// ABOUTME: Covers result caps, truncation, context expansion, and defaults.

package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admjs/obsidian-mcp/internal/tools"
	"github.com/admjs/obsidian-mcp/internal/vault"
)

// newTestCorpus writes matching notes containing the marker and filler
// notes that never match, then returns an engine over them.
func newTestCorpus(t *testing.T, matching, filler int) *Engine {
	t.Helper()
	v, err := vault.Open(t.TempDir(), slog.Default())
	require.NoError(t, err)

	for i := 0; i < matching; i++ {
		path := fmt.Sprintf("match-%03d.md", i)
		require.NoError(t, v.Write(path, "some text with the needle inside\n", false))
	}
	for i := 0; i < filler; i++ {
		path := fmt.Sprintf("zz-filler-%03d.md", i)
		require.NoError(t, v.Write(path, "nothing interesting here\n", false))
	}

	return New(v, slog.Default())
}

func TestSearchRequiresQuery(t *testing.T) {
	e := newTestCorpus(t, 0, 1)
	_, err := e.Search(context.Background(), Options{})
	assert.ErrorIs(t, err, tools.ErrInvalidInput)
}

func TestSearchCapsResults(t *testing.T) {
	// 30 matching notes, cap at 7 < 30.
	e := newTestCorpus(t, 30, 10)

	out, err := e.Search(context.Background(), Options{Query: "needle", MaxResults: 7})
	require.NoError(t, err)

	assert.Len(t, out.Results, 7)
	assert.True(t, out.Summary.Truncated)
	assert.Equal(t, 7, out.Summary.TotalResults)
	assert.LessOrEqual(t, out.Summary.FilesProcessed, 40)
	assert.Equal(t, 40, out.Summary.TotalFilesInVault)
}

func TestSearchReturnsAllWhenUnderCap(t *testing.T) {
	// 5 matching notes, cap at 20 > 5.
	e := newTestCorpus(t, 5, 10)

	out, err := e.Search(context.Background(), Options{Query: "needle", MaxResults: 20})
	require.NoError(t, err)

	assert.Len(t, out.Results, 5)
	assert.False(t, out.Summary.Truncated)
	assert.Equal(t, 15, out.Summary.FilesProcessed, "no early termination, full scan")
}

func TestSearchEarlyTermination(t *testing.T) {
	// Enough matches that the first batch satisfies the cap; later
	// candidates must never be examined.
	e := newTestCorpus(t, batchSize, 200)

	out, err := e.Search(context.Background(), Options{Query: "needle", MaxResults: 5})
	require.NoError(t, err)

	assert.Len(t, out.Results, 5)
	assert.Equal(t, batchSize, out.Summary.FilesProcessed)
	assert.True(t, out.Summary.Truncated)
}

func TestSearchMaxFilesHardCap(t *testing.T) {
	e := newTestCorpus(t, 2, 30)

	out, err := e.Search(context.Background(), Options{Query: "needle", MaxFiles: 10})
	require.NoError(t, err)

	assert.LessOrEqual(t, out.Summary.FilesProcessed, 10)
	assert.Equal(t, 32, out.Summary.TotalFilesInVault)
}

func TestSearchCaseInsensitive(t *testing.T) {
	v, err := vault.Open(t.TempDir(), slog.Default())
	require.NoError(t, err)
	require.NoError(t, v.Write("a.md", "The NEEDLE is uppercase\n", false))

	e := New(v, slog.Default())
	out, err := e.Search(context.Background(), Options{Query: "needle"})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Len(t, out.Results[0].Matches, 1)
}

func TestSearchScoring(t *testing.T) {
	v, err := vault.Open(t.TempDir(), slog.Default())
	require.NoError(t, err)
	require.NoError(t, v.Write("once.md", "needle\n", false))
	require.NoError(t, v.Write("thrice.md", "needle needle needle\n", false))

	e := New(v, slog.Default())
	out, err := e.Search(context.Background(), Options{Query: "needle"})
	require.NoError(t, err)

	require.Len(t, out.Results, 2)
	assert.Equal(t, "thrice.md", out.Results[0].Filename, "higher score sorts first")
	assert.Greater(t, out.Results[0].Score, out.Results[1].Score)
}

func TestContextExpansion(t *testing.T) {
	v, err := vault.Open(t.TempDir(), slog.Default())
	require.NoError(t, err)

	// Match at a known offset: 40 bytes of padding, then the query.
	padding := strings.Repeat("x", 40)
	content := padding + "needle" + strings.Repeat("y", 40)
	require.NoError(t, v.Write("doc.md", content, false))

	e := New(v, slog.Default())

	t.Run("clamped at document start and end", func(t *testing.T) {
		out, err := e.Search(context.Background(), Options{Query: "needle", ContextLength: 100})
		require.NoError(t, err)
		require.Len(t, out.Results, 1)
		m := out.Results[0].Matches[0]

		// Context covers the whole document; match position is relative
		// to the slice.
		assert.Equal(t, content, m.Context)
		assert.Equal(t, 40, m.Position.Start)
		assert.Equal(t, 46, m.Position.End)
	})

	t.Run("narrow context window", func(t *testing.T) {
		out, err := e.Search(context.Background(), Options{Query: "needle", ContextLength: 10})
		require.NoError(t, err)
		require.Len(t, out.Results, 1)
		m := out.Results[0].Matches[0]

		assert.Equal(t, content[30:56], m.Context)
		assert.Equal(t, 10, m.Position.Start)
		assert.Equal(t, 16, m.Position.End)
		assert.Equal(t, "needle", m.Context[m.Position.Start:m.Position.End])
	})
}

func TestSearchCollectsAllOccurrences(t *testing.T) {
	v, err := vault.Open(t.TempDir(), slog.Default())
	require.NoError(t, err)
	require.NoError(t, v.Write("multi.md", "ab ab ab\n", false))

	e := New(v, slog.Default())
	out, err := e.Search(context.Background(), Options{Query: "ab"})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Len(t, out.Results[0].Matches, 3)
}

func TestSearchNoMatches(t *testing.T) {
	e := newTestCorpus(t, 0, 5)

	out, err := e.Search(context.Background(), Options{Query: "needle"})
	require.NoError(t, err)
	assert.Empty(t, out.Results)
	assert.False(t, out.Summary.Truncated)
	assert.Equal(t, 5, out.Summary.FilesProcessed)
}

// ABOUTME: Batched full-text search over vault notes with early termination.
// ABOUTME: Scans candidates in fixed-size batches and yields between batches.

package search

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/admjs/obsidian-mcp/internal/tools"
	"github.com/admjs/obsidian-mcp/internal/vault"
)

// Defaults applied when the caller omits an option.
const (
	DefaultContextLength = 100
	DefaultMaxResults    = 20
	DefaultMaxFiles      = 500

	// batchSize is the number of notes examined between yield points.
	batchSize = 20
)

// Options controls one search invocation.
type Options struct {
	Query         string
	ContextLength int
	MaxResults    int
	MaxFiles      int
}

// MatchPosition locates a match within its context slice.
type MatchPosition struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Match is one occurrence of the query with surrounding context.
type Match struct {
	Context  string        `json:"context"`
	Position MatchPosition `json:"match_position"`
}

// Result is one matching note.
type Result struct {
	Filename string  `json:"filename"`
	Score    float64 `json:"score"`
	Matches  []Match `json:"matches"`
}

// Summary describes how the scan went.
type Summary struct {
	Query             string `json:"query"`
	TotalResults      int    `json:"total_results"`
	FilesProcessed    int    `json:"files_processed"`
	TotalFilesInVault int    `json:"total_files_in_vault"`
	SearchTimeMs      int64  `json:"search_time_ms"`
	Truncated         bool   `json:"truncated"`
}

// Output is the full search response.
type Output struct {
	Summary Summary  `json:"summary"`
	Results []Result `json:"results"`
}

// Engine performs batched, early-terminating scans over the vault.
type Engine struct {
	vault  *vault.Vault
	logger *slog.Logger
}

// New creates a search engine over the vault.
func New(v *vault.Vault, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default().With("component", "search")
	}
	return &Engine{vault: v, logger: logger}
}

// Search scans up to opts.MaxFiles notes for the query. Notes are processed
// in fixed-size batches; once accumulated results reach opts.MaxResults the
// remaining candidates are never examined. A note that fails to read is
// logged and skipped.
func (e *Engine) Search(ctx context.Context, opts Options) (*Output, error) {
	if opts.Query == "" {
		return nil, fmt.Errorf("%w: query is required", tools.ErrInvalidInput)
	}
	if opts.ContextLength <= 0 {
		opts.ContextLength = DefaultContextLength
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = DefaultMaxFiles
	}

	start := time.Now()

	notes, err := e.vault.ListNotes()
	if err != nil {
		return nil, fmt.Errorf("enumerating notes: %w", err)
	}
	totalFiles := len(notes)

	// Hard cap: candidates beyond MaxFiles are never examined.
	candidates := notes
	if len(candidates) > opts.MaxFiles {
		candidates = candidates[:opts.MaxFiles]
	}

	queryLower := strings.ToLower(opts.Query)
	var results []Result
	processed := 0
	stoppedEarly := false

scan:
	for batchStart := 0; batchStart < len(candidates); batchStart += batchSize {
		batchEnd := batchStart + batchSize
		if batchEnd > len(candidates) {
			batchEnd = len(candidates)
		}

		for _, path := range candidates[batchStart:batchEnd] {
			processed++
			content, err := e.vault.CachedRead(path)
			if err != nil {
				e.logger.Warn("skipping unreadable note", "path", path, "error", err)
				continue
			}
			if r, ok := scanNote(path, content, queryLower, opts.ContextLength); ok {
				results = append(results, r)
			}
		}

		if len(results) >= opts.MaxResults {
			stoppedEarly = batchEnd < len(candidates)
			break scan
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Yield between batches so other work on the thread can run.
		runtime.Gosched()
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	truncated := len(results) > opts.MaxResults || stoppedEarly
	if len(results) > opts.MaxResults {
		results = results[:opts.MaxResults]
	}
	if results == nil {
		results = []Result{}
	}

	out := &Output{
		Summary: Summary{
			Query:             opts.Query,
			TotalResults:      len(results),
			FilesProcessed:    processed,
			TotalFilesInVault: totalFiles,
			SearchTimeMs:      time.Since(start).Milliseconds(),
			Truncated:         truncated,
		},
		Results: results,
	}

	e.logger.Debug("search complete",
		"query", opts.Query,
		"results", len(results),
		"files_processed", processed,
		"truncated", truncated,
		"elapsed_ms", out.Summary.SearchTimeMs,
	)
	return out, nil
}

// scanNote finds every occurrence of queryLower in the note and builds the
// result with context-expanded matches. Returns false when nothing matched.
func scanNote(path, content, queryLower string, contextLength int) (Result, bool) {
	contentLower := strings.ToLower(content)

	var matches []Match
	offset := 0
	for {
		i := strings.Index(contentLower[offset:], queryLower)
		if i < 0 {
			break
		}
		s := offset + i
		e := s + len(queryLower)
		matches = append(matches, expandMatch(content, s, e, contextLength))
		offset = e
	}

	nameHit := strings.Contains(strings.ToLower(path), queryLower)
	if len(matches) == 0 && !nameHit {
		return Result{}, false
	}

	// Content matches dominate the score; a filename hit adds a bonus so
	// "notes about X" files surface above incidental mentions.
	score := float64(len(matches))
	if nameHit {
		score += 5
	}

	return Result{Filename: path, Score: score, Matches: matches}, true
}

// expandMatch widens the match span [s,e) by contextLength bytes on each
// side, clamped to document bounds. The returned position is relative to
// the context slice.
func expandMatch(content string, s, e, contextLength int) Match {
	ctxStart := s - contextLength
	if ctxStart < 0 {
		ctxStart = 0
	}
	ctxEnd := e + contextLength
	if ctxEnd > len(content) {
		ctxEnd = len(content)
	}
	return Match{
		Context: content[ctxStart:ctxEnd],
		Position: MatchPosition{
			Start: s - ctxStart,
			End:   e - ctxStart,
		},
	}
}

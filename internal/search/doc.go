// Package search provides full-text search over the vault.
//
// # Overview
//
// The engine scans every markdown note for a case-insensitive substring
// match, scores the hits, and returns matches with surrounding context.
// There is no inverted index for content; the scan reads through the
// vault's cache, so repeated searches over an unchanged vault avoid
// re-reading files.
//
// # Options
//
//	out, err := engine.Search(ctx, search.Options{
//	    Query:         "quarterly review",
//	    ContextLength: 100, // characters either side of a match
//	    MaxResults:    20,
//	    MaxFiles:      500,
//	})
//
// Zero values take the defaults above. Query is required.
//
// # Scanning
//
// Notes are processed in fixed-size batches. Between batches the engine
// checks for context cancellation and yields the processor; once enough
// results have accumulated it stops early rather than scanning the
// remaining candidates. MaxFiles bounds the candidate set before the
// scan starts.
//
// # Scoring
//
// A note's score is its match count, plus a bonus when the query appears
// in the filename. Results are ordered by descending score. The output
// summary reports how many files were scanned, how many exist, elapsed
// time, and whether the result set was truncated.
//
// Unreadable notes are logged and skipped; a single bad file never fails
// the search.
package search

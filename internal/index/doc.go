// Package index provides the SQLite-backed note metadata index.
//
// # Overview
//
// The index stores titles and tags extracted from note markdown, backing
// the search_by_tag and vault_stats tools. Tag extraction parses the
// markdown with goldmark: #tags inside code spans and code blocks are
// ignored, tags are lowercased, and the note title is its first heading.
//
// # Schema
//
//	notes(path PRIMARY KEY, title, indexed_at)
//	note_tags(path, tag, PRIMARY KEY(path, tag)) ON DELETE CASCADE
//
// The database runs with WAL journaling and foreign keys on. The default
// configuration uses :memory: and rebuilds from the vault at startup;
// pointing index.path at a file persists it across restarts.
//
// # Usage
//
//	ix, err := index.Open(":memory:", logger)
//	err = ix.Rebuild(ctx, v)
//	paths, err := ix.NotesWithTag(ctx, "#work")
//	stats, err := ix.Stats(ctx)
//
// Tag lookups accept the name with or without the leading #.
package index

// Package vault provides the filesystem note store.
//
// # Overview
//
// A Vault is a directory tree of markdown notes. All operations take
// vault-relative, forward-slash paths and are confined to the root:
// absolute paths and paths containing ".." fail with ErrInvalidPath
// before touching the filesystem.
//
// # Operations
//
//	v, err := vault.Open("/home/user/notes", logger)
//	content, err := v.Read("projects/gateway.md")
//	err = v.Write("inbox/idea.md", "# Idea\n", false)
//	err = v.Append("daily.md", "\n- done\n")
//	err = v.Delete("scratch.md")
//
// Write refuses to replace an existing note unless overwrite is set,
// returning ErrAlreadyExists. Append creates the note when absent.
// Parent directories are created as needed.
//
// # Listing
//
// List returns one directory level, directories first, hidden entries
// skipped. ListNotes walks the whole tree and returns every .md path,
// sorted, skipping hidden directories like .obsidian.
//
// # Read Caching
//
// CachedRead serves repeated reads from an in-memory cache keyed by path
// and validated against the file's modification time. A note edited
// outside the gateway is picked up on the next read without any
// invalidation protocol. Writes through the vault invalidate eagerly.
// The cache holds a bounded number of entries and evicts the oldest.
package vault

// ABOUTME: Filesystem-backed note store rooted at a vault directory.
// ABOUTME: Provides read/write/append/delete/list/stat with path confinement.

package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Store errors.
var (
	ErrNotFound      = errors.New("note not found")
	ErrAlreadyExists = errors.New("note already exists")
	ErrInvalidPath   = errors.New("path escapes vault root")
	ErrIsDirectory   = errors.New("path is a directory")
)

// EntryKind discriminates vault entries.
type EntryKind string

// Entry kinds.
const (
	KindFile EntryKind = "file"
	KindDir  EntryKind = "directory"
)

// Entry describes one vault entry: a note file or a directory.
type Entry struct {
	Path    string    `json:"path"`
	Kind    EntryKind `json:"kind"`
	Size    int64     `json:"size,omitempty"`
	ModTime time.Time `json:"modified_at"`
}

// Vault is a filesystem note store. All paths are vault-relative,
// forward-slash separated, and confined to the root directory.
type Vault struct {
	root   string
	cache  *readCache
	logger *slog.Logger
}

// Open validates the root directory and returns a Vault over it.
func Open(root string, logger *slog.Logger) (*Vault, error) {
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening vault at %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root %s is not a directory", abs)
	}

	return &Vault{
		root:   abs,
		cache:  newReadCache(defaultCacheSize),
		logger: logger,
	}, nil
}

// Root returns the absolute vault root path.
func (v *Vault) Root() string {
	return v.root
}

// resolve maps a vault-relative path to an absolute one, rejecting
// anything that would escape the root.
func (v *Vault) resolve(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return filepath.Join(v.root, cleaned), nil
}

// Read returns the content of the note at path.
func (v *Vault) Read(path string) (string, error) {
	abs, err := v.resolve(path)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			if info, statErr := os.Stat(abs); statErr == nil && info.IsDir() {
				return "", fmt.Errorf("%w: %s", ErrIsDirectory, path)
			}
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// CachedRead returns note content, serving unchanged files from the
// in-memory cache. Staleness is detected by comparing mtimes.
func (v *Vault) CachedRead(path string) (string, error) {
	abs, err := v.resolve(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	if content, ok := v.cache.get(path, info.ModTime()); ok {
		return content, nil
	}

	content, err := v.Read(path)
	if err != nil {
		return "", err
	}
	v.cache.put(path, content, info.ModTime())
	return content, nil
}

// Write creates the note at path with the given content, creating parent
// directories as needed. Returns ErrAlreadyExists for an existing note
// unless overwrite is set.
func (v *Vault) Write(path, content string, overwrite bool) error {
	abs, err := v.resolve(path)
	if err != nil {
		return err
	}

	if !overwrite {
		if _, err := os.Stat(abs); err == nil {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("creating parent directories for %s: %w", path, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	v.cache.invalidate(path)
	return nil
}

// Append appends content to the note at path, creating it if absent.
func (v *Vault) Append(path, content string) error {
	abs, err := v.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("creating parent directories for %s: %w", path, err)
	}

	f, err := os.OpenFile(abs, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("appending to %s: %w", path, err)
	}

	v.cache.invalidate(path)
	return nil
}

// Delete removes the note at path.
func (v *Vault) Delete(path string) error {
	abs, err := v.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("deleting %s: %w", path, err)
	}

	v.cache.invalidate(path)
	return nil
}

// Stat returns the entry at path as a tagged variant.
func (v *Vault) Stat(path string) (Entry, error) {
	abs, err := v.resolve(path)
	if err != nil {
		return Entry{}, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Entry{}, fmt.Errorf("stat %s: %w", path, err)
	}

	return entryFromInfo(filepath.ToSlash(filepath.Clean(path)), info), nil
}

// List returns the entries directly under dir, directories first, each
// group sorted by name. An empty dir lists the vault root.
func (v *Vault) List(dir string) ([]Entry, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := v.resolve(dir)
	if err != nil {
		return nil, err
	}

	dirents, err := os.ReadDir(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		if strings.HasPrefix(d.Name(), ".") {
			continue
		}
		info, err := d.Info()
		if err != nil {
			v.logger.Warn("skipping unreadable entry", "dir", dir, "name", d.Name(), "error", err)
			continue
		}
		rel := d.Name()
		if dir != "." {
			rel = filepath.ToSlash(filepath.Join(dir, d.Name()))
		}
		entries = append(entries, entryFromInfo(rel, info))
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Kind != entries[j].Kind {
			return entries[i].Kind == KindDir
		}
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}

// ListNotes walks the vault and returns the relative paths of all markdown
// notes in lexical order. Hidden directories are skipped.
func (v *Vault) ListNotes() ([]string, error) {
	var notes []string

	err := filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			v.logger.Warn("skipping unreadable path during walk", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != v.root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			rel, relErr := filepath.Rel(v.root, path)
			if relErr != nil {
				return nil
			}
			notes = append(notes, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking vault: %w", err)
	}

	sort.Strings(notes)
	return notes, nil
}

func entryFromInfo(rel string, info fs.FileInfo) Entry {
	kind := KindFile
	var size int64
	if info.IsDir() {
		kind = KindDir
	} else {
		size = info.Size()
	}
	return Entry{
		Path:    rel,
		Kind:    kind,
		Size:    size,
		ModTime: info.ModTime(),
	}
}

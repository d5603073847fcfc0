// Package lister produces point-in-time directory snapshots. Listings are
// non-recursive, skip hidden entries, and are always re-read live; nothing
// is cached between calls.
package lister

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"folio/internal/logging"
	"folio/internal/sandbox"
	"folio/internal/services"
)

// Kind distinguishes files from directories in a snapshot entry.
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
)

// Entry is a snapshot of one filesystem node at list time.
type Entry struct {
	Name       string    `json:"name"`
	Kind       Kind      `json:"kind"`
	Size       int64     `json:"size,omitempty"`
	ModifiedAt time.Time `json:"modified_at"`
	Extension  string    `json:"extension,omitempty"`
}

// Lister reads directory snapshots inside the sandbox.
type Lister struct {
	guard  *sandbox.Guard
	logger *slog.Logger
}

// New constructs a Lister bound to the given guard.
func New(guard *sandbox.Guard, logger *slog.Logger) *Lister {
	return &Lister{guard: guard, logger: logging.WithComponent(logger, "lister")}
}

// List returns the visible entries of the directory at path, sorted by name
// ascending. Hidden (dot-prefixed) entries are excluded. A single unreadable
// entry is logged and skipped; the rest of the listing is still returned.
func (l *Lister) List(ctx context.Context, path string) ([]Entry, error) {
	resolved, err := l.guard.Resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "lister", "stat", resolved, err)
		}
		return nil, services.Wrap(services.ErrIO, "lister", "stat", resolved, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrNotDirectory, "lister", "stat", resolved, nil)
	}

	dirEntries, err := os.ReadDir(resolved)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "lister", "read dir", resolved, err)
	}

	logger := logging.WithContext(ctx, l.logger)
	// os.ReadDir returns entries sorted by filename.
	entries := make([]Entry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		name := dirEntry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		entry, err := snapshot(dirEntry)
		if err != nil {
			logger.Warn("skipping unreadable entry",
				logging.String("name", name),
				logging.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func snapshot(dirEntry fs.DirEntry) (Entry, error) {
	info, err := dirEntry.Info()
	if err != nil {
		return Entry{}, err
	}
	entry := Entry{
		Name:       dirEntry.Name(),
		ModifiedAt: info.ModTime(),
	}
	if dirEntry.IsDir() {
		entry.Kind = KindDirectory
		return entry, nil
	}
	entry.Kind = KindFile
	entry.Size = info.Size()
	entry.Extension = NormalizedExtension(dirEntry.Name())
	return entry, nil
}

// NormalizedExtension returns the lowercased extension of name without the
// leading dot, or "" when name has none.
func NormalizedExtension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Package dedupe groups byte-identical files by streaming content hashes.
// Hash equality is the only duplicate criterion; name or size similarity is
// never used as a substitute.
package dedupe

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"log/slog"

	"folio/internal/fileutil"
	"folio/internal/logging"
	"folio/internal/sandbox"
	"folio/internal/services"
)

// Member is one file inside a duplicate group.
type Member struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Group holds all files sharing one content hash. WastedBytes is the space
// reclaimable by keeping a single member.
type Group struct {
	ContentHash        string   `json:"content_hash"`
	RepresentativeSize int64    `json:"representative_size"`
	Members            []Member `json:"members"`
	WastedBytes        int64    `json:"wasted_bytes"`
}

// Detector scans a folder (optionally its subtree) for duplicate content.
type Detector struct {
	guard  *sandbox.Guard
	logger *slog.Logger
}

// New constructs a Detector bound to the given guard.
func New(guard *sandbox.Guard, logger *slog.Logger) *Detector {
	return &Detector{guard: guard, logger: logging.WithComponent(logger, "dedupe")}
}

// FindDuplicates hashes every visible file under path and returns groups with
// two or more byte-identical members, sorted by wasted bytes descending.
// Unreadable files are logged and excluded; the context is checked between
// files so long scans stay cancelable.
func (d *Detector) FindDuplicates(ctx context.Context, path string, recursive bool) ([]Group, error) {
	resolved, err := d.guard.Resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "dedupe", "stat", resolved, err)
		}
		return nil, services.Wrap(services.ErrIO, "dedupe", "stat", resolved, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrNotDirectory, "dedupe", "stat", resolved, nil)
	}

	files, err := d.collect(resolved, recursive)
	if err != nil {
		return nil, err
	}

	logger := logging.WithContext(ctx, d.logger)
	byHash := make(map[string][]Member)
	sizes := make(map[string]int64)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hash, size, hashErr := fileutil.HashFile(file)
		if hashErr != nil {
			logger.Warn("skipping unreadable file",
				logging.String("path", file),
				logging.Error(hashErr))
			continue
		}
		fileInfo, statErr := os.Stat(file)
		modified := time.Time{}
		if statErr == nil {
			modified = fileInfo.ModTime()
		}
		byHash[hash] = append(byHash[hash], Member{
			Name:       filepath.Base(file),
			Path:       file,
			Size:       size,
			ModifiedAt: modified,
		})
		sizes[hash] = size
	}

	groups := make([]Group, 0)
	for hash, members := range byHash {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
		size := sizes[hash]
		groups = append(groups, Group{
			ContentHash:        hash,
			RepresentativeSize: size,
			Members:            members,
			WastedBytes:        size * int64(len(members)-1),
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].WastedBytes != groups[j].WastedBytes {
			return groups[i].WastedBytes > groups[j].WastedBytes
		}
		return groups[i].ContentHash < groups[j].ContentHash
	})
	return groups, nil
}

func (d *Detector) collect(root string, recursive bool) ([]string, error) {
	if !recursive {
		dirEntries, err := os.ReadDir(root)
		if err != nil {
			return nil, services.Wrap(services.ErrIO, "dedupe", "read dir", root, err)
		}
		files := make([]string, 0, len(dirEntries))
		for _, entry := range dirEntries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			// Only regular files are hashed. Symlinks could point outside the
			// sandbox, and special files (FIFOs, devices) can block a read.
			if !entry.Type().IsRegular() {
				d.logger.Warn("skipping non-regular file",
					logging.String("path", filepath.Join(root, entry.Name())))
				continue
			}
			files = append(files, filepath.Join(root, entry.Name()))
		}
		return files, nil
	}

	var files []string
	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: log and keep walking the rest.
			d.logger.Warn("skipping unreadable path",
				logging.String("path", path),
				logging.Error(err))
			return nil
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") && path != root {
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if !entry.Type().IsRegular() {
			d.logger.Warn("skipping non-regular file", logging.String("path", path))
			return nil
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		return nil, services.Wrap(services.ErrIO, "dedupe", "walk", root, walkErr)
	}
	return files, nil
}

// Package organizer moves top-level files into subfolders, either by file
// type or by a classifier-described category. Directories are never moved,
// destination folders are created lazily, and an occupied destination name
// blocks the move unless a conflict decision says otherwise.
package organizer

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"folio/internal/classifier"
	"folio/internal/fileutil"
	"folio/internal/lister"
	"folio/internal/logging"
	"folio/internal/normalize"
	"folio/internal/plan"
	"folio/internal/sandbox"
	"folio/internal/services"
)

// NoExtensionFolder receives files whose name carries no extension.
const NoExtensionFolder = "NO_EXTENSION"

// Result extends the plan execution result with the subfolders the
// operation created (or would create, in a dry run).
type Result struct {
	plan.Result
	CreatedFolders []string `json:"created_folders"`
}

// Organizer executes by-type and by-category organization inside the
// sandbox.
type Organizer struct {
	guard      *sandbox.Guard
	lister     *lister.Lister
	classifier classifier.Service
	logger     *slog.Logger
}

// New constructs an Organizer. The classifier may be classifier.Disabled
// when no provider is configured; only by-category organization needs it.
func New(guard *sandbox.Guard, l *lister.Lister, svc classifier.Service, logger *slog.Logger) *Organizer {
	if svc == nil {
		svc = classifier.Disabled{}
	}
	return &Organizer{
		guard:      guard,
		lister:     l,
		classifier: svc,
		logger:     logging.WithComponent(logger, "organizer"),
	}
}

// TypeFolder returns the subfolder name for a file, derived from its
// extension.
func TypeFolder(name string) string {
	ext := lister.NormalizedExtension(name)
	if ext == "" {
		return NoExtensionFolder
	}
	return strings.ToUpper(ext)
}

// OrganizeByType moves every top-level file into a subfolder named after its
// uppercased extension. Already-placed files are skipped, folders are created
// only when a move actually targets them, and an existing destination file is
// recorded as skipped rather than overwritten.
func (o *Organizer) OrganizeByType(ctx context.Context, path string, dryRun bool) (Result, error) {
	dir, entries, err := o.snapshot(ctx, path)
	if err != nil {
		return Result{}, err
	}

	result := Result{Result: plan.Result{DryRun: dryRun}}
	folders := newFolderTracker(dir, dryRun)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return Result{}, services.Wrap(services.ErrIO, "organizer", "organize_by_type", "operation canceled", err)
		}
		if entry.Kind != lister.KindFile {
			continue
		}
		o.moveIntoFolder(ctx, &result, folders, dir, entry.Name, TypeFolder(entry.Name), dryRun, false)
	}
	result.CreatedFolders = folders.created()
	o.logger.Info("organize by type finished", logging.Args(
		logging.Bool("dry_run", dryRun),
		logging.Int("applied", len(result.Applied)),
		logging.Int("skipped", len(result.Skipped)),
		logging.Int("errors", len(result.Errors)),
		logging.Int("created_folders", len(result.CreatedFolders)))...)
	return result, nil
}

// OrganizeByCategory asks the classifier which top-level files belong to the
// described category and moves the included ones into a slug-named category
// folder. Files the classifier excluded, or never mentioned, stay put.
func (o *Organizer) OrganizeByCategory(ctx context.Context, path, description string, dryRun bool) (Result, error) {
	if strings.TrimSpace(description) == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, "organizer", "organize_by_category", "category description is required", nil)
	}
	dir, entries, err := o.snapshot(ctx, path)
	if err != nil {
		return Result{}, err
	}

	var files []classifier.FileInfo
	for _, entry := range entries {
		if entry.Kind != lister.KindFile {
			continue
		}
		files = append(files, classifier.FileInfo{
			Name:      entry.Name,
			Path:      filepath.Join(dir, entry.Name),
			Size:      entry.Size,
			Extension: entry.Extension,
		})
	}

	result := Result{Result: plan.Result{DryRun: dryRun}}
	if len(files) == 0 {
		return result, nil
	}

	decisions, err := o.classifier.Classify(ctx, files, description)
	if err != nil {
		return Result{}, services.Wrap(services.ErrIO, "organizer", "organize_by_category", "classification failed", err)
	}
	byFile := classifier.DecisionsByFile(files, decisions)

	folder := normalize.Token(description)
	folders := newFolderTracker(dir, dryRun)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return Result{}, services.Wrap(services.ErrIO, "organizer", "organize_by_category", "operation canceled", err)
		}
		decision := byFile[file.Name]
		if !decision.Include {
			reason := decision.Rationale
			if reason == "" {
				reason = "excluded by classifier"
			}
			result.Skipped = append(result.Skipped, plan.SkippedItem{Name: file.Name, Reason: reason})
			continue
		}
		o.moveIntoFolder(ctx, &result, folders, dir, file.Name, folder, dryRun, true)
	}
	result.CreatedFolders = folders.created()
	o.logger.Info("organize by category finished", logging.Args(
		logging.String("folder", folder),
		logging.Bool("dry_run", dryRun),
		logging.Int("applied", len(result.Applied)),
		logging.Int("skipped", len(result.Skipped)),
		logging.Int("errors", len(result.Errors)))...)
	return result, nil
}

func (o *Organizer) snapshot(ctx context.Context, path string) (string, []lister.Entry, error) {
	dir, err := o.guard.ResolveDefault(path)
	if err != nil {
		return "", nil, err
	}
	entries, err := o.lister.List(ctx, dir)
	if err != nil {
		return "", nil, err
	}
	return dir, entries, nil
}

// moveIntoFolder validates and performs a single move. resolveConflicts
// selects between the by-type policy (occupied destination is always a skip)
// and the by-category policy (occupied destination is delegated to the
// conflict resolver, with skip as the safe fallback).
func (o *Organizer) moveIntoFolder(ctx context.Context, result *Result, folders *folderTracker, dir, name, folder string, dryRun, resolveConflicts bool) {
	if filepath.Base(dir) == folder {
		result.Skipped = append(result.Skipped, plan.SkippedItem{Name: name, Reason: "already in " + folder})
		return
	}

	// The guard resolves through the folder's parent, so validation works
	// whether or not the folder exists yet. Target names are single path
	// components, keeping the final destination inside the resolved folder.
	resolvedFolder, err := o.guard.Resolve(filepath.Join(dir, folder))
	if err != nil {
		result.Errors = append(result.Errors, plan.ItemError{
			Name:      name,
			Proposed:  filepath.Join(folder, name),
			ErrorType: services.ErrorType(err),
			Reason:    err.Error(),
		})
		return
	}

	src := filepath.Join(dir, name)
	targetName := name
	dst := filepath.Join(resolvedFolder, targetName)

	if _, err := os.Lstat(src); err != nil {
		result.Errors = append(result.Errors, plan.ItemError{
			Name:      name,
			Proposed:  filepath.Join(folder, targetName),
			ErrorType: "NotFoundError",
			Reason:    "source no longer exists",
		})
		return
	}

	replace := false
	if _, err := os.Lstat(dst); err == nil {
		if !resolveConflicts {
			result.Skipped = append(result.Skipped, plan.SkippedItem{Name: name, Reason: "destination already exists"})
			return
		}
		action, newName := o.resolveConflict(ctx, targetName)
		switch action {
		case classifier.ActionSkip:
			result.Skipped = append(result.Skipped, plan.SkippedItem{Name: name, Reason: "destination already exists"})
			return
		case classifier.ActionReplace:
			replace = true
		case classifier.ActionRename:
			targetName = newName
			dst = filepath.Join(resolvedFolder, targetName)
			if _, err := os.Lstat(dst); err == nil {
				result.Skipped = append(result.Skipped, plan.SkippedItem{Name: name, Reason: "conflict rename target already exists"})
				return
			}
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		result.Errors = append(result.Errors, plan.ItemError{
			Name:      name,
			Proposed:  filepath.Join(folder, targetName),
			ErrorType: "IOFailure",
			Reason:    err.Error(),
		})
		return
	}

	if err := folders.ensure(folder); err != nil {
		result.Errors = append(result.Errors, plan.ItemError{
			Name:      name,
			Proposed:  filepath.Join(folder, targetName),
			ErrorType: "IOFailure",
			Reason:    err.Error(),
		})
		return
	}

	if dryRun {
		result.Applied = append(result.Applied, plan.AppliedItem{From: name, To: filepath.Join(folder, targetName)})
		return
	}

	if replace {
		if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
			result.Errors = append(result.Errors, plan.ItemError{
				Name:      name,
				Proposed:  filepath.Join(folder, targetName),
				ErrorType: "IOFailure",
				Reason:    err.Error(),
			})
			return
		}
	}
	if err := fileutil.MoveFile(src, dst); err != nil {
		result.Errors = append(result.Errors, plan.ItemError{
			Name:      name,
			Proposed:  filepath.Join(folder, targetName),
			ErrorType: "IOFailure",
			Reason:    err.Error(),
		})
		return
	}
	o.logger.Info("moved file", logging.Args(
		logging.String("from", name),
		logging.String("to", filepath.Join(folder, targetName)))...)
	result.Applied = append(result.Applied, plan.AppliedItem{From: name, To: filepath.Join(folder, targetName)})
}

func (o *Organizer) resolveConflict(ctx context.Context, incoming string) (classifier.ConflictAction, string) {
	decision, err := o.classifier.ResolveConflict(ctx, incoming, incoming)
	safe := classifier.SafeConflict(decision, err)
	if err != nil {
		o.logger.Warn("conflict resolver failed, skipping", logging.Args(
			logging.String("file", incoming),
			logging.Error(err))...)
	}
	return safe.Action, safe.NewName
}

// folderTracker performs lazy folder creation and remembers which folders
// this operation brought into existence. In dry-run mode it only records
// what would be created.
type folderTracker struct {
	dir     string
	dryRun  bool
	ensured map[string]bool
	made    []string
}

func newFolderTracker(dir string, dryRun bool) *folderTracker {
	return &folderTracker{dir: dir, dryRun: dryRun, ensured: make(map[string]bool)}
}

func (f *folderTracker) ensure(folder string) error {
	if f.ensured[folder] {
		return nil
	}
	target := filepath.Join(f.dir, folder)
	info, err := os.Lstat(target)
	switch {
	case err == nil:
		if !info.IsDir() {
			return errors.New("destination folder name is taken by a file: " + folder)
		}
	case errors.Is(err, fs.ErrNotExist):
		if !f.dryRun {
			if mkErr := os.Mkdir(target, 0o755); mkErr != nil {
				return mkErr
			}
		}
		f.made = append(f.made, folder)
	default:
		return err
	}
	f.ensured[folder] = true
	return nil
}

func (f *folderTracker) created() []string {
	return f.made
}

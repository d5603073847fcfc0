package plan

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"folio/internal/logging"
	"folio/internal/sandbox"
	"folio/internal/services"
)

// Applier executes rename plans against a directory inside the sandbox.
type Applier struct {
	guard  *sandbox.Guard
	logger *slog.Logger
}

// NewApplier constructs an Applier bound to the given guard.
func NewApplier(guard *sandbox.Guard, logger *slog.Logger) *Applier {
	return &Applier{guard: guard, logger: logging.WithComponent(logger, "applier")}
}

// Apply validates and (unless dryRun) executes every item of the plan
// against the directory at path. Whole-call failures (bad directory, sandbox
// violation) return an error with nothing mutated; per-item failures land in
// the result's Errors bucket and never block other items.
func (a *Applier) Apply(ctx context.Context, path string, items []Item, dryRun bool) (Result, error) {
	result := Result{
		DryRun:  dryRun,
		Applied: []AppliedItem{},
		Skipped: []SkippedItem{},
		Errors:  []ItemError{},
	}

	resolvedDir, err := a.guard.Resolve(path)
	if err != nil {
		return result, err
	}
	info, err := os.Stat(resolvedDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, services.Wrap(services.ErrNotFound, "applier", "stat", resolvedDir, err)
		}
		return result, services.Wrap(services.ErrIO, "applier", "stat", resolvedDir, err)
	}
	if !info.IsDir() {
		return result, services.Wrap(services.ErrNotDirectory, "applier", "stat", resolvedDir, nil)
	}

	logger := logging.WithContext(ctx, a.logger)
	for _, item := range items {
		a.applyItem(logger, &result, resolvedDir, item, dryRun)
	}

	logger.Info("plan applied",
		logging.Bool("dry_run", dryRun),
		logging.Int("applied", len(result.Applied)),
		logging.Int("skipped", len(result.Skipped)),
		logging.Int("errors", len(result.Errors)))
	return result, nil
}

func (a *Applier) applyItem(logger *slog.Logger, result *Result, dir string, item Item, dryRun bool) {
	if !item.NeedsChange || item.ProposedName == item.CurrentName {
		result.Skipped = append(result.Skipped, SkippedItem{
			Name:   item.CurrentName,
			Reason: "no change needed",
		})
		return
	}

	if reason := invalidName(item.ProposedName); reason != "" {
		result.Errors = append(result.Errors, ItemError{
			Name:      item.CurrentName,
			Proposed:  item.ProposedName,
			ErrorType: "SecurityError",
			Reason:    reason,
		})
		return
	}

	// Plans can be stale; both endpoints go back through the guard.
	src, err := a.guard.Resolve(filepath.Join(dir, item.CurrentName))
	if err != nil {
		result.Errors = append(result.Errors, itemError(item, err))
		return
	}
	dst, err := a.guard.Resolve(filepath.Join(dir, item.ProposedName))
	if err != nil {
		result.Errors = append(result.Errors, itemError(item, err))
		return
	}

	if _, err := os.Lstat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			result.Errors = append(result.Errors, ItemError{
				Name:      item.CurrentName,
				Proposed:  item.ProposedName,
				ErrorType: "NotFoundError",
				Reason:    "source no longer exists",
			})
			return
		}
		result.Errors = append(result.Errors, ItemError{
			Name:      item.CurrentName,
			Proposed:  item.ProposedName,
			ErrorType: "IOFailure",
			Reason:    err.Error(),
		})
		return
	}

	if _, err := os.Lstat(dst); err == nil {
		result.Errors = append(result.Errors, ItemError{
			Name:      item.CurrentName,
			Proposed:  item.ProposedName,
			ErrorType: "Conflict",
			Reason:    "destination already exists",
		})
		return
	} else if !errors.Is(err, fs.ErrNotExist) {
		// Cannot confirm the destination is free; fail the item, never
		// risk an overwrite.
		result.Errors = append(result.Errors, ItemError{
			Name:      item.CurrentName,
			Proposed:  item.ProposedName,
			ErrorType: "IOFailure",
			Reason:    err.Error(),
		})
		return
	}

	if dryRun {
		result.Applied = append(result.Applied, AppliedItem{From: item.CurrentName, To: item.ProposedName})
		return
	}

	if err := os.Rename(src, dst); err != nil {
		logger.Warn("rename failed",
			logging.String("from", item.CurrentName),
			logging.String("to", item.ProposedName),
			logging.Error(err))
		result.Errors = append(result.Errors, ItemError{
			Name:      item.CurrentName,
			Proposed:  item.ProposedName,
			ErrorType: "IOFailure",
			Reason:    err.Error(),
		})
		return
	}
	result.Applied = append(result.Applied, AppliedItem{From: item.CurrentName, To: item.ProposedName})
}

func itemError(item Item, err error) ItemError {
	return ItemError{
		Name:      item.CurrentName,
		Proposed:  item.ProposedName,
		ErrorType: services.ErrorType(err),
		Reason:    err.Error(),
	}
}

func invalidName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "proposed name is empty"
	}
	if trimmed == "." || trimmed == ".." {
		return "proposed name is a relative path component"
	}
	if strings.ContainsRune(trimmed, os.PathSeparator) || strings.ContainsRune(trimmed, '/') {
		return "proposed name contains a path separator"
	}
	return ""
}

// Package engine is the facade over the folder management components. It
// owns construction and wiring, stamps every call with an operation id, and
// journals committed mutations. The engine holds no state between calls;
// the filesystem is the only persisted artifact.
package engine

import (
	"context"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"folio/internal/audit"
	"folio/internal/classifier"
	"folio/internal/config"
	"folio/internal/dedupe"
	"folio/internal/lister"
	"folio/internal/logging"
	"folio/internal/normalize"
	"folio/internal/organizer"
	"folio/internal/plan"
	"folio/internal/sandbox"
	"folio/internal/services"
)

// Engine exposes the operation surface. Construct with New; the zero value
// is not usable.
type Engine struct {
	cfg       *config.Config
	guard     *sandbox.Guard
	logger    *slog.Logger
	lister    *lister.Lister
	detector  *dedupe.Detector
	planner   *normalize.Planner
	applier   *plan.Applier
	organizer *organizer.Organizer
	journal   *audit.Journal
}

// Option overrides a collaborator during construction, mainly for tests.
type Option func(*options)

type options struct {
	classifier classifier.Service
	journal    *audit.Journal
}

// WithClassifier injects a classifier service instead of building one from
// the configuration.
func WithClassifier(svc classifier.Service) Option {
	return func(o *options) { o.classifier = svc }
}

// WithJournal injects an already-open audit journal.
func WithJournal(journal *audit.Journal) Option {
	return func(o *options) { o.journal = journal }
}

// New wires an engine from explicit configuration. Multiple engines with
// different sandboxes can coexist in one process.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "new", "configuration is required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	var settings options
	for _, opt := range opts {
		opt(&settings)
	}

	guard, err := sandbox.NewGuard(cfg.Sandbox.Roots)
	if err != nil {
		return nil, err
	}

	svc := settings.classifier
	if svc == nil {
		svc = classifier.Service(classifier.Disabled{})
		if llm := cfg.GetClassifier(); llm.Enabled {
			client, clientErr := classifier.NewClient(classifier.ClientConfig{
				APIKey:  llm.APIKey,
				BaseURL: llm.BaseURL,
				Model:   llm.Model,
				Timeout: time.Duration(llm.TimeoutSeconds) * time.Second,
			}, logger)
			if clientErr != nil {
				return nil, clientErr
			}
			svc = client
		}
	}

	journal := settings.journal
	if journal == nil && cfg.Audit.Enabled {
		journal, err = audit.Open(cfg.Audit.Path)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "engine", "new", "open audit journal", err)
		}
	}

	engineLogger := logging.WithComponent(logger, "engine")
	dirLister := lister.New(guard, logger)
	return &Engine{
		cfg:       cfg,
		guard:     guard,
		logger:    engineLogger,
		lister:    dirLister,
		detector:  dedupe.New(guard, logger),
		planner:   normalize.NewPlanner(dirLister, logger),
		applier:   plan.NewApplier(guard, logger),
		organizer: organizer.New(guard, dirLister, svc, logger),
		journal:   journal,
	}, nil
}

// Roots returns the sandbox roots in configuration order.
func (e *Engine) Roots() []string {
	return e.guard.Roots()
}

// Journal returns the audit journal, or nil when auditing is disabled.
func (e *Engine) Journal() *audit.Journal {
	return e.journal
}

// Close releases engine-owned resources.
func (e *Engine) Close() error {
	return e.journal.Close()
}

// begin stamps the context with a fresh operation id and returns a logger
// carrying the call's correlation fields.
func (e *Engine) begin(ctx context.Context, operation, root string) (context.Context, *slog.Logger, string) {
	operationID := uuid.NewString()
	ctx = services.WithOperationID(ctx, operationID)
	ctx = services.WithOperation(ctx, operation)
	ctx = services.WithRoot(ctx, root)
	return ctx, logging.WithContext(ctx, e.logger), operationID
}

// List returns a snapshot of the directory at path, or of the first root
// when path is empty.
func (e *Engine) List(ctx context.Context, path string) (ListResult, error) {
	resolved, err := e.guard.ResolveDefault(path)
	if err != nil {
		return ListResult{}, err
	}
	ctx, logger, _ := e.begin(ctx, "list", resolved)

	entries, err := e.lister.List(ctx, resolved)
	if err != nil {
		return ListResult{}, err
	}
	logger.Info("listed directory", logging.Int("entries", len(entries)))
	return ListResult{Path: resolved, Entries: entries}, nil
}

// FindDuplicates hashes files under path and groups byte-identical ones.
func (e *Engine) FindDuplicates(ctx context.Context, path string, recursive bool) (DuplicatesResult, error) {
	resolved, err := e.guard.ResolveDefault(path)
	if err != nil {
		return DuplicatesResult{}, err
	}
	ctx, logger, _ := e.begin(ctx, "find_duplicates", resolved)

	groups, err := e.detector.FindDuplicates(ctx, resolved, recursive)
	if err != nil {
		return DuplicatesResult{}, err
	}
	logger.Info("duplicate scan finished",
		logging.Bool("recursive", recursive),
		logging.Int("groups", len(groups)))
	return DuplicatesResult{Path: resolved, Recursive: recursive, Groups: groups}, nil
}

// PlanAlpha proposes the normalization rename for every visible entry at
// path. The plan is advisory until applied.
func (e *Engine) PlanAlpha(ctx context.Context, path string) (PlanResult, error) {
	resolved, err := e.guard.ResolveDefault(path)
	if err != nil {
		return PlanResult{}, err
	}
	ctx, logger, _ := e.begin(ctx, "plan_alpha", resolved)

	items, err := e.planner.PlanAlpha(ctx, resolved)
	if err != nil {
		return PlanResult{}, err
	}
	document := plan.Document{Path: resolved, GeneratedAt: time.Now().UTC(), Items: items}
	logger.Info("plan generated",
		logging.Int("items", len(items)),
		logging.Int("changes", document.Changes()))
	return PlanResult{Plan: document}, nil
}

// ApplyPlan executes (or dry-runs) a rename plan against path. Items are
// re-validated against the live tree; results enumerate every item's fate.
func (e *Engine) ApplyPlan(ctx context.Context, path string, items []plan.Item, dryRun bool) (ApplyResult, error) {
	resolved, err := e.guard.ResolveDefault(path)
	if err != nil {
		return ApplyResult{}, err
	}
	ctx, logger, operationID := e.begin(ctx, "apply_plan", resolved)

	result, err := e.applier.Apply(ctx, resolved, items, dryRun)
	if err != nil {
		return ApplyResult{}, err
	}
	if !dryRun {
		e.journalApplied(ctx, logger, operationID, "apply_plan", "rename", resolved, result.Applied)
	}
	logger.Info("plan applied",
		logging.Bool("dry_run", dryRun),
		logging.Int("applied", len(result.Applied)),
		logging.Int("skipped", len(result.Skipped)),
		logging.Int("errors", len(result.Errors)))
	return ApplyResult{Path: resolved, Result: result}, nil
}

// OrganizeByType moves top-level files into uppercase-extension subfolders.
func (e *Engine) OrganizeByType(ctx context.Context, path string, dryRun bool) (OrganizeResult, error) {
	resolved, err := e.guard.ResolveDefault(path)
	if err != nil {
		return OrganizeResult{}, err
	}
	ctx, logger, operationID := e.begin(ctx, "organize_by_type", resolved)

	result, err := e.organizer.OrganizeByType(ctx, resolved, dryRun)
	if err != nil {
		return OrganizeResult{}, err
	}
	if !dryRun {
		e.journalApplied(ctx, logger, operationID, "organize_by_type", "move", resolved, result.Applied)
	}
	return OrganizeResult{Path: resolved, Result: result}, nil
}

// OrganizeByCategory moves classifier-included files into a category folder
// named after the description.
func (e *Engine) OrganizeByCategory(ctx context.Context, path, description string, dryRun bool) (OrganizeResult, error) {
	resolved, err := e.guard.ResolveDefault(path)
	if err != nil {
		return OrganizeResult{}, err
	}
	ctx, logger, operationID := e.begin(ctx, "organize_by_category", resolved)

	result, err := e.organizer.OrganizeByCategory(ctx, resolved, description, dryRun)
	if err != nil {
		return OrganizeResult{}, err
	}
	if !dryRun {
		e.journalApplied(ctx, logger, operationID, "organize_by_category", "move", resolved, result.Applied)
	}
	return OrganizeResult{Path: resolved, Category: normalize.Token(description), Result: result}, nil
}

// AuditRecent lists the newest journal entries.
func (e *Engine) AuditRecent(ctx context.Context, limit int) ([]audit.Entry, error) {
	if e.journal == nil {
		return nil, services.Wrap(services.ErrConfiguration, "engine", "audit_recent", "audit journal is not enabled", nil)
	}
	return e.journal.Recent(ctx, limit)
}

// journalApplied records committed mutations. Journal failures are logged
// and never fail the operation that already succeeded on disk.
func (e *Engine) journalApplied(ctx context.Context, logger *slog.Logger, operationID, operation, action, root string, applied []plan.AppliedItem) {
	if e.journal == nil || len(applied) == 0 {
		return
	}
	for _, item := range applied {
		entry := audit.Entry{
			OperationID: operationID,
			Operation:   operation,
			Root:        root,
			Action:      action,
			Source:      item.From,
			Destination: item.To,
		}
		if err := e.journal.Record(ctx, entry); err != nil {
			logger.Warn("audit record failed", logging.Error(err))
		}
	}
}

package plan

import (
	"time"

	"folio/internal/lister"
)

// Item is one proposed rename inside a directory. NeedsChange == false
// implies ProposedName == CurrentName; such items are always skipped.
type Item struct {
	CurrentName  string      `json:"current_name"`
	ProposedName string      `json:"proposed_name"`
	Kind         lister.Kind `json:"kind"`
	NeedsChange  bool        `json:"needs_change"`
}

// Document is the serialized form of a plan, produced by `folio plan` and
// consumed by `folio apply`. Plans may be stale by apply time; the applier
// re-validates every item against the live filesystem.
type Document struct {
	Path        string    `json:"path"`
	GeneratedAt time.Time `json:"generated_at"`
	Items       []Item    `json:"items"`
}

// Changes counts the items that actually propose a rename.
func (d Document) Changes() int {
	count := 0
	for _, item := range d.Items {
		if item.NeedsChange {
			count++
		}
	}
	return count
}

// AppliedItem records one rename that was performed (or would be, in a
// dry run).
type AppliedItem struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// SkippedItem records one no-op item and why it was skipped.
type SkippedItem struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ItemError records one item that failed validation or execution.
type ItemError struct {
	Name      string `json:"name"`
	Proposed  string `json:"proposed,omitempty"`
	ErrorType string `json:"error_type"`
	Reason    string `json:"reason"`
}

// Result enumerates the fate of every input item. Each item appears in
// exactly one of Applied, Skipped, or Errors.
type Result struct {
	DryRun  bool          `json:"dry_run"`
	Applied []AppliedItem `json:"applied"`
	Skipped []SkippedItem `json:"skipped"`
	Errors  []ItemError   `json:"errors"`
}

// Total returns the number of items accounted for across all buckets.
func (r Result) Total() int {
	return len(r.Applied) + len(r.Skipped) + len(r.Errors)
}

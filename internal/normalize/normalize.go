// Package normalize proposes idempotent filename normalization: lowercase,
// underscores for spaces and hyphens, no repeated or dangling underscores.
// Applying the rule to its own output always yields the same output.
package normalize

import (
	"context"
	"path/filepath"
	"strings"

	"log/slog"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"folio/internal/lister"
	"folio/internal/logging"
	"folio/internal/plan"
)

var lowercaser = cases.Lower(language.Und)

// Name returns the normalized form of a file or directory name. For files
// the extension is lowercased and reattached after the stem is normalized
// separately, so "My Notes.PDF" becomes "my_notes.pdf".
func Name(name string, kind lister.Kind) string {
	if kind == lister.KindDirectory {
		return normalizeStem(name)
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		// Dot-prefixed names are hidden and never planned, but stay safe.
		stem = ext
		ext = ""
	}
	normalized := normalizeStem(stem)
	return normalized + lowercaser.String(norm.NFC.String(ext))
}

func normalizeStem(stem string) string {
	out := lowercaser.String(norm.NFC.String(stem))
	out = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '\t':
			return '_'
		default:
			return r
		}
	}, out)
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	out = strings.Trim(out, "_")
	if out == "" {
		return "unnamed"
	}
	return out
}

// Token converts free text into a lowercase filesystem-safe folder name.
// Letters and digits survive, everything else collapses to underscores.
// Returns "unsorted" for input with nothing usable.
func Token(value string) string {
	value = lowercaser.String(norm.NFC.String(strings.TrimSpace(value)))
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	if out == "" {
		return "unsorted"
	}
	return out
}

// Planner proposes normalization renames for a directory snapshot.
type Planner struct {
	lister *lister.Lister
	logger *slog.Logger
}

// NewPlanner constructs a Planner over the given lister.
func NewPlanner(l *lister.Lister, logger *slog.Logger) *Planner {
	return &Planner{lister: l, logger: logging.WithComponent(logger, "normalize")}
}

// PlanAlpha snapshots the directory at path and returns one plan item per
// visible entry. Items whose name is already normalized carry
// NeedsChange == false; re-running the planner on an applied plan therefore
// proposes zero changes.
func (p *Planner) PlanAlpha(ctx context.Context, path string) ([]plan.Item, error) {
	entries, err := p.lister.List(ctx, path)
	if err != nil {
		return nil, err
	}

	items := make([]plan.Item, 0, len(entries))
	for _, entry := range entries {
		proposed := Name(entry.Name, entry.Kind)
		items = append(items, plan.Item{
			CurrentName:  entry.Name,
			ProposedName: proposed,
			Kind:         entry.Kind,
			NeedsChange:  proposed != entry.Name,
		})
	}

	logging.WithContext(ctx, p.logger).Debug("normalization plan built",
		logging.Int("entries", len(items)))
	return items, nil
}

package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"folio/internal/config"
	"folio/internal/lister"
	"folio/internal/logging"
	"folio/internal/plan"
	"folio/internal/services"
	"folio/internal/testsupport"
)

func newTestEngine(t *testing.T, opts ...testsupport.ConfigOption) (*Engine, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	eng, err := New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = eng.Close() })
	return eng, testsupport.SandboxRoot(cfg)
}

func TestNewRequiresRoots(t *testing.T) {
	cfg := config.Default()
	cfg.Sandbox.Roots = nil
	if _, err := New(&cfg, logging.NewNop()); services.ErrorType(err) != "SecurityError" {
		t.Fatalf("expected SecurityError for empty roots, got %v", err)
	}
}

func TestListDefaultsToFirstRoot(t *testing.T) {
	eng, root := newTestEngine(t)
	testsupport.WriteContent(t, filepath.Join(root, "notes.txt"), []byte("n"))
	testsupport.WriteContent(t, filepath.Join(root, ".hidden"), []byte("h"))

	result, err := eng.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Entries) != 1 || result.Entries[0].Name != "notes.txt" {
		t.Fatalf("unexpected entries: %+v", result.Entries)
	}
	if result.Entries[0].Kind != lister.KindFile {
		t.Fatalf("unexpected kind: %+v", result.Entries[0])
	}
}

func TestListOutsideSandboxFailsClosed(t *testing.T) {
	eng, _ := newTestEngine(t)
	outside := t.TempDir()
	_, err := eng.List(context.Background(), outside)
	if services.ErrorType(err) != "SecurityError" {
		t.Fatalf("expected SecurityError, got %v", err)
	}
	payload := NewErrorPayload(err)
	if !payload.Error || payload.ErrorType != "SecurityError" || payload.ErrorMessage == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestPlanThenApplyRoundTrip(t *testing.T) {
	eng, root := newTestEngine(t)
	testsupport.WriteContent(t, filepath.Join(root, "My Notes.PDF"), []byte("pdf"))
	testsupport.WriteContent(t, filepath.Join(root, "ready.txt"), []byte("txt"))

	planResult, err := eng.PlanAlpha(context.Background(), "")
	if err != nil {
		t.Fatalf("PlanAlpha: %v", err)
	}
	if planResult.Plan.Changes() != 1 {
		t.Fatalf("expected 1 change, got %+v", planResult.Plan)
	}

	applyResult, err := eng.ApplyPlan(context.Background(), "", planResult.Plan.Items, false)
	if err != nil {
		t.Fatalf("ApplyPlan: %v", err)
	}
	if len(applyResult.Result.Applied) != 1 || applyResult.Result.Applied[0].To != "my_notes.pdf" {
		t.Fatalf("unexpected apply result: %+v", applyResult.Result)
	}
	if _, err := os.Stat(filepath.Join(root, "my_notes.pdf")); err != nil {
		t.Fatalf("renamed file missing: %v", err)
	}

	// A second plan over the renamed tree is a fixed point.
	replan, err := eng.PlanAlpha(context.Background(), "")
	if err != nil {
		t.Fatalf("replan: %v", err)
	}
	if replan.Plan.Changes() != 0 {
		t.Fatalf("expected stable names, got %+v", replan.Plan)
	}
}

func TestFindDuplicatesExampleScenario(t *testing.T) {
	eng, root := newTestEngine(t)
	testsupport.WriteContent(t, filepath.Join(root, "Photo Trip.JPG"), []byte("same bytes"))
	testsupport.WriteContent(t, filepath.Join(root, "photo_trip.jpg"), []byte("same bytes"))
	testsupport.WriteContent(t, filepath.Join(root, "notes.txt"), []byte("different"))

	result, err := eng.FindDuplicates(context.Background(), "", false)
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	if len(result.Groups) != 1 {
		t.Fatalf("expected 1 group, got %+v", result.Groups)
	}
	group := result.Groups[0]
	if len(group.Members) != 2 || group.WastedBytes != int64(len("same bytes")) {
		t.Fatalf("unexpected group: %+v", group)
	}
}

func TestApplyPlanJournalsCommittedRenames(t *testing.T) {
	eng, root := newTestEngine(t, testsupport.WithAudit())
	testsupport.WriteContent(t, filepath.Join(root, "My Notes.PDF"), []byte("pdf"))

	planResult, err := eng.PlanAlpha(context.Background(), "")
	if err != nil {
		t.Fatalf("PlanAlpha: %v", err)
	}

	if _, err := eng.ApplyPlan(context.Background(), "", planResult.Plan.Items, true); err != nil {
		t.Fatalf("dry run: %v", err)
	}
	entries, err := eng.AuditRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("AuditRecent: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("dry runs must not be journaled, got %+v", entries)
	}

	if _, err := eng.ApplyPlan(context.Background(), "", planResult.Plan.Items, false); err != nil {
		t.Fatalf("commit: %v", err)
	}
	entries, err = eng.AuditRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("AuditRecent: %v", err)
	}
	if len(entries) != 1 || entries[0].Destination != "my_notes.pdf" {
		t.Fatalf("expected one journaled rename, got %+v", entries)
	}
	if entries[0].OperationID == "" {
		t.Fatal("journal entries must carry the operation id")
	}
}

func TestOrganizeByTypeThroughEngine(t *testing.T) {
	eng, root := newTestEngine(t)
	testsupport.WriteContent(t, filepath.Join(root, "deck.pdf"), []byte("pdf"))
	testsupport.WriteContent(t, filepath.Join(root, "song.mp3"), []byte("mp3"))

	result, err := eng.OrganizeByType(context.Background(), "", false)
	if err != nil {
		t.Fatalf("OrganizeByType: %v", err)
	}
	if result.Result.Total() != 2 || len(result.Result.Applied) != 2 {
		t.Fatalf("unexpected result: %+v", result.Result)
	}
	for _, want := range []string{filepath.Join("PDF", "deck.pdf"), filepath.Join("MP3", "song.mp3")} {
		if _, err := os.Stat(filepath.Join(root, want)); err != nil {
			t.Fatalf("expected %s: %v", want, err)
		}
	}
}

func TestApplyPlanBucketsStayDisjoint(t *testing.T) {
	eng, root := newTestEngine(t)
	testsupport.WriteContent(t, filepath.Join(root, "Photo Trip.JPG"), []byte("original"))
	testsupport.WriteContent(t, filepath.Join(root, "photo_trip.jpg"), []byte("existing"))

	items := []plan.Item{
		{CurrentName: "Photo Trip.JPG", ProposedName: "photo_trip.jpg", Kind: lister.KindFile, NeedsChange: true},
		{CurrentName: "photo_trip.jpg", ProposedName: "photo_trip.jpg", Kind: lister.KindFile, NeedsChange: false},
	}
	result, err := eng.ApplyPlan(context.Background(), "", items, false)
	if err != nil {
		t.Fatalf("ApplyPlan: %v", err)
	}
	if result.Result.Total() != 2 {
		t.Fatalf("every item must land in exactly one bucket: %+v", result.Result)
	}
	if len(result.Result.Errors) != 1 || result.Result.Errors[0].ErrorType != "Conflict" {
		t.Fatalf("expected conflict error, got %+v", result.Result.Errors)
	}
	content, err := os.ReadFile(filepath.Join(root, "photo_trip.jpg"))
	if err != nil || string(content) != "existing" {
		t.Fatalf("conflicting file must be untouched: %v %q", err, content)
	}
}

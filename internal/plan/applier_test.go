package plan_test

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"folio/internal/lister"
	"folio/internal/logging"
	"folio/internal/plan"
	"folio/internal/sandbox"
	"folio/internal/services"
	"folio/internal/testsupport"
)

func newApplier(t *testing.T, root string) *plan.Applier {
	t.Helper()
	guard, err := sandbox.NewGuard([]string{root})
	if err != nil {
		t.Fatalf("guard: %v", err)
	}
	return plan.NewApplier(guard, logging.NewNop())
}

func fileItem(current, proposed string) plan.Item {
	return plan.Item{
		CurrentName:  current,
		ProposedName: proposed,
		Kind:         lister.KindFile,
		NeedsChange:  current != proposed,
	}
}

// treeFingerprint captures names and content hashes so dry-run side effects
// are detectable.
func treeFingerprint(t *testing.T, root string) []string {
	t.Helper()
	var lines []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			lines = append(lines, "dir:"+path)
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		h := sha256.New()
		if _, err := io.Copy(h, f); err != nil {
			return err
		}
		lines = append(lines, fmt.Sprintf("file:%s:%x", path, h.Sum(nil)))
		return nil
	})
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	sort.Strings(lines)
	return lines
}

func TestApplyRenames(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "My Notes.PDF"), 8)

	result, err := newApplier(t, root).Apply(context.Background(), root, []plan.Item{
		fileItem("My Notes.PDF", "my_notes.pdf"),
	}, false)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(result.Applied) != 1 || result.Applied[0].To != "my_notes.pdf" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if _, err := os.Stat(filepath.Join(root, "my_notes.pdf")); err != nil {
		t.Fatalf("renamed file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "My Notes.PDF")); !os.IsNotExist(err) {
		t.Fatal("original name should be gone")
	}
}

func TestApplyDryRunHasNoSideEffects(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "Raw Name.txt"), 16)
	before := treeFingerprint(t, root)

	result, err := newApplier(t, root).Apply(context.Background(), root, []plan.Item{
		fileItem("Raw Name.txt", "raw_name.txt"),
	}, true)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !result.DryRun || len(result.Applied) != 1 {
		t.Fatalf("dry run should report the would-be rename: %+v", result)
	}

	after := treeFingerprint(t, root)
	if len(before) != len(after) {
		t.Fatalf("dry run mutated the tree: %v vs %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("dry run mutated the tree: %q != %q", before[i], after[i])
		}
	}
}

func TestApplyConflictIsErrorNotOverwrite(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteContent(t, filepath.Join(root, "Photo Trip.JPG"), []byte("original"))
	testsupport.WriteContent(t, filepath.Join(root, "photo_trip.jpg"), []byte("existing"))

	result, err := newApplier(t, root).Apply(context.Background(), root, []plan.Item{
		fileItem("Photo Trip.JPG", "photo_trip.jpg"),
	}, false)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(result.Errors) != 1 || result.Errors[0].ErrorType != "Conflict" {
		t.Fatalf("expected conflict error, got %+v", result)
	}
	if len(result.Applied) != 0 {
		t.Fatalf("conflicting rename must not be applied: %+v", result.Applied)
	}

	// Both files remain untouched.
	for name, want := range map[string]string{"Photo Trip.JPG": "original", "photo_trip.jpg": "existing"} {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(data) != want {
			t.Fatalf("%s content changed to %q", name, data)
		}
	}
}

func TestApplyAccountsForEveryItem(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "A File.txt"), 4)
	testsupport.WriteFile(t, filepath.Join(root, "taken.txt"), 4)
	testsupport.WriteFile(t, filepath.Join(root, "Other File.txt"), 4)

	items := []plan.Item{
		fileItem("A File.txt", "a_file.txt"),          // applied
		fileItem("already_clean.txt", "already_clean.txt"), // skipped (no change)
		fileItem("Other File.txt", "taken.txt"),       // conflict
		fileItem("vanished.txt", "renamed.txt"),       // missing source
	}
	result, err := newApplier(t, root).Apply(context.Background(), root, items, false)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if result.Total() != len(items) {
		t.Fatalf("bucket accounting broken: %+v", result)
	}
	if len(result.Applied) != 1 || len(result.Skipped) != 1 || len(result.Errors) != 2 {
		t.Fatalf("unexpected bucket sizes: applied=%d skipped=%d errors=%d",
			len(result.Applied), len(result.Skipped), len(result.Errors))
	}

	types := map[string]string{}
	for _, itemErr := range result.Errors {
		types[itemErr.Name] = itemErr.ErrorType
	}
	if types["Other File.txt"] != "Conflict" {
		t.Fatalf("expected Conflict for taken destination, got %v", types)
	}
	if types["vanished.txt"] != "NotFoundError" {
		t.Fatalf("expected NotFoundError for missing source, got %v", types)
	}
}

func TestApplyRejectsEscapingProposedName(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "victim.txt"), 4)

	result, err := newApplier(t, root).Apply(context.Background(), root, []plan.Item{
		{CurrentName: "victim.txt", ProposedName: "../escaped.txt", Kind: lister.KindFile, NeedsChange: true},
	}, false)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(result.Errors) != 1 || result.Errors[0].ErrorType != "SecurityError" {
		t.Fatalf("expected security error for separator in name, got %+v", result)
	}
	if _, err := os.Stat(filepath.Join(root, "victim.txt")); err != nil {
		t.Fatalf("victim should be untouched: %v", err)
	}
}

func TestApplyWholeCallFailures(t *testing.T) {
	root := t.TempDir()
	applier := newApplier(t, root)

	if _, err := applier.Apply(context.Background(), filepath.Join(root, "gone"), nil, false); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found for missing dir, got %v", err)
	}

	file := filepath.Join(root, "f.txt")
	testsupport.WriteFile(t, file, 1)
	if _, err := applier.Apply(context.Background(), file, nil, false); !errors.Is(err, services.ErrNotDirectory) {
		t.Fatalf("expected not-a-directory, got %v", err)
	}

	if _, err := applier.Apply(context.Background(), "/etc", nil, false); !errors.Is(err, services.ErrSandbox) {
		t.Fatalf("expected sandbox error, got %v", err)
	}
}

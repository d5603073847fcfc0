package sandbox_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"folio/internal/sandbox"
	"folio/internal/services"
)

func newGuard(t *testing.T, roots ...string) *sandbox.Guard {
	t.Helper()
	guard, err := sandbox.NewGuard(roots)
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	return guard
}

func TestNewGuardRequiresRoots(t *testing.T) {
	_, err := sandbox.NewGuard(nil)
	if !errors.Is(err, services.ErrSandbox) {
		t.Fatalf("expected sandbox error for empty roots, got %v", err)
	}
	_, err = sandbox.NewGuard([]string{"  ", ""})
	if !errors.Is(err, services.ErrSandbox) {
		t.Fatalf("expected sandbox error for blank roots, got %v", err)
	}
}

func TestNewGuardRejectsMissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	_, err := sandbox.NewGuard([]string{missing})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing root, got %v", err)
	}
}

func TestResolveAcceptsRootAndDescendants(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "docs")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	guard := newGuard(t, root)

	for _, path := range []string{root, sub, filepath.Join(sub, "..", "docs")} {
		if _, err := guard.Resolve(path); err != nil {
			t.Errorf("Resolve(%q) unexpectedly failed: %v", path, err)
		}
	}
}

func TestResolveRejectsTraversalEscape(t *testing.T) {
	root := t.TempDir()
	guard := newGuard(t, root)

	escape := filepath.Join(root, "..", "escape")
	if _, err := guard.Resolve(escape); !errors.Is(err, services.ErrSandbox) {
		t.Fatalf("expected sandbox error for %q, got %v", escape, err)
	}
	if _, err := guard.Resolve("/etc/passwd"); !errors.Is(err, services.ErrSandbox) {
		t.Fatalf("expected sandbox error for absolute outside path, got %v", err)
	}
}

func TestResolveRejectsSymlinkPointingOutside(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "root")
	outside := filepath.Join(base, "outside")
	for _, dir := range []string{root, outside} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	link := filepath.Join(root, "sneaky")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	guard := newGuard(t, root)

	if _, err := guard.Resolve(link); !errors.Is(err, services.ErrSandbox) {
		t.Fatalf("expected sandbox error for outward symlink, got %v", err)
	}
	if _, err := guard.Resolve(filepath.Join(link, "file.txt")); !errors.Is(err, services.ErrSandbox) {
		t.Fatalf("expected sandbox error for path under outward symlink, got %v", err)
	}
}

func TestResolveMissingLeafUsesParent(t *testing.T) {
	root := t.TempDir()
	guard := newGuard(t, root)

	dest := filepath.Join(root, "renamed.txt")
	resolved, err := guard.Resolve(dest)
	if err != nil {
		t.Fatalf("resolve missing leaf: %v", err)
	}
	if filepath.Base(resolved) != "renamed.txt" {
		t.Fatalf("resolved leaf changed: %q", resolved)
	}

	// A missing parent must fail closed, not be treated as safe.
	if _, err := guard.Resolve(filepath.Join(root, "no-dir", "renamed.txt")); !errors.Is(err, services.ErrSandbox) {
		t.Fatalf("expected sandbox error for missing parent, got %v", err)
	}
}

func TestResolveSiblingPrefixIsOutside(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "data")
	sibling := filepath.Join(base, "data-backup")
	for _, dir := range []string{root, sibling} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	guard := newGuard(t, root)

	// "data-backup" shares the string prefix "data" but is not a descendant.
	if _, err := guard.Resolve(sibling); !errors.Is(err, services.ErrSandbox) {
		t.Fatalf("expected sandbox error for sibling prefix path, got %v", err)
	}
}

func TestMultipleRoots(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	guard := newGuard(t, rootA, rootB)

	if _, err := guard.Resolve(filepath.Join(rootB, "inside.txt")); err != nil {
		t.Fatalf("second root should be allowed: %v", err)
	}
	if guard.DefaultRoot() == "" {
		t.Fatal("default root missing")
	}
	if got, err := guard.ResolveDefault(""); err != nil || got != guard.DefaultRoot() {
		t.Fatalf("ResolveDefault(\"\") = %q, %v", got, err)
	}
}

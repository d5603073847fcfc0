package sandbox

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"folio/internal/services"
)

// Guard validates that paths stay inside the configured allowed roots.
// Roots are resolved once at construction and immutable afterwards.
type Guard struct {
	roots []string
}

// NewGuard resolves the configured roots and returns a guard over them.
// At least one root is required; each root must exist and resolve to a
// directory.
func NewGuard(roots []string) (*Guard, error) {
	resolved := make([]string, 0, len(roots))
	seen := map[string]struct{}{}
	for _, root := range roots {
		trimmed := strings.TrimSpace(root)
		if trimmed == "" {
			continue
		}
		abs, err := filepath.Abs(filepath.Clean(trimmed))
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "sandbox", "resolve root", fmt.Sprintf("invalid root %q", trimmed), err)
		}
		real, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "sandbox", "resolve root", fmt.Sprintf("root %q is not resolvable", abs), err)
		}
		if _, ok := seen[real]; ok {
			continue
		}
		seen[real] = struct{}{}
		resolved = append(resolved, real)
	}
	if len(resolved) == 0 {
		return nil, services.Wrap(services.ErrSandbox, "sandbox", "init", "no configured roots", nil)
	}
	return &Guard{roots: resolved}, nil
}

// Roots returns the resolved allowed roots in configuration order.
func (g *Guard) Roots() []string {
	out := make([]string, len(g.roots))
	copy(out, g.roots)
	return out
}

// DefaultRoot returns the first configured root. Operations with an omitted
// path target this root.
func (g *Guard) DefaultRoot() string {
	return g.roots[0]
}

// Resolve turns path into a symlink-free absolute path and verifies it lies
// inside one of the allowed roots. A path whose leaf does not exist yet (a
// rename destination) resolves through its existing parent. Any ambiguity
// fails closed.
func (g *Guard) Resolve(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", services.Wrap(services.ErrSandbox, "sandbox", "resolve", "empty path", nil)
	}
	abs, err := filepath.Abs(filepath.Clean(trimmed))
	if err != nil {
		return "", services.Wrap(services.ErrSandbox, "sandbox", "resolve", fmt.Sprintf("cannot absolutize %q", trimmed), err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return "", services.Wrap(services.ErrSandbox, "sandbox", "resolve", fmt.Sprintf("cannot resolve %q", abs), err)
		}
		// The leaf may legitimately not exist yet (rename destination).
		// Resolve the parent, which must exist, and reattach the leaf.
		parent, leaf := filepath.Dir(abs), filepath.Base(abs)
		resolvedParent, parentErr := filepath.EvalSymlinks(parent)
		if parentErr != nil {
			return "", services.Wrap(services.ErrSandbox, "sandbox", "resolve", fmt.Sprintf("parent of %q is not resolvable", abs), parentErr)
		}
		resolved = filepath.Join(resolvedParent, leaf)
	}

	if !g.contains(resolved) {
		return "", services.Wrap(services.ErrSandbox, "sandbox", "resolve", fmt.Sprintf("%q is outside every allowed root", resolved), nil)
	}
	return resolved, nil
}

// ResolveDefault behaves like Resolve but substitutes the first allowed root
// when path is empty.
func (g *Guard) ResolveDefault(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return g.DefaultRoot(), nil
	}
	return g.Resolve(path)
}

func (g *Guard) contains(resolved string) bool {
	for _, root := range g.roots {
		if resolved == root {
			return true
		}
		if strings.HasPrefix(resolved, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

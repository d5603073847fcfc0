package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"folio/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique sandbox root per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	root := filepath.Join(base, "root")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir sandbox root: %v", err)
	}

	cfgVal := config.Default()
	cfgVal.Sandbox.Roots = []string{root}
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	cfgVal.Daemon.SocketPath = filepath.Join(base, "folio.sock")
	cfgVal.Daemon.LockPath = filepath.Join(base, "folio.lock")
	cfgVal.Audit.Path = filepath.Join(base, "audit.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithRoots replaces the sandbox roots on the test config.
func WithRoots(roots ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sandbox.Roots = roots
	}
}

// WithAudit enables the audit journal on the test config.
func WithAudit() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Audit.Enabled = true
	}
}

// SandboxRoot returns the generated sandbox root for the test config.
func SandboxRoot(cfg *config.Config) string {
	if len(cfg.Sandbox.Roots) == 0 {
		return ""
	}
	return cfg.Sandbox.Roots[0]
}

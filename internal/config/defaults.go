package config

const (
	defaultLogDir                   = "~/.local/share/folio/logs"
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
	defaultSocketPath               = "~/.local/share/folio/folio.sock"
	defaultLockPath                 = "~/.local/share/folio/folio.lock"
	defaultAuditPath                = "~/.local/share/folio/audit.db"
	defaultClassifierBaseURL        = "https://openrouter.ai/api/v1"
	defaultClassifierModel          = "google/gemini-3-flash-preview"
	defaultClassifierTimeoutSeconds = 60
)

// Default returns a Config populated with repository defaults. Sandbox roots
// have no default: the engine refuses to run without explicit roots.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Dir:    defaultLogDir,
		},
		Classifier: Classifier{
			BaseURL:        defaultClassifierBaseURL,
			Model:          defaultClassifierModel,
			TimeoutSeconds: defaultClassifierTimeoutSeconds,
		},
		Daemon: Daemon{
			SocketPath: defaultSocketPath,
			LockPath:   defaultLockPath,
		},
		Audit: Audit{
			Path: defaultAuditPath,
		},
	}
}

package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeSandbox(); err != nil {
		return err
	}
	if err := c.normalizeDaemon(); err != nil {
		return err
	}
	if err := c.normalizeAudit(); err != nil {
		return err
	}
	if err := c.normalizeClassifier(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeSandbox() error {
	roots := make([]string, 0, len(c.Sandbox.Roots))
	seen := map[string]struct{}{}
	for _, root := range c.Sandbox.Roots {
		trimmed := strings.TrimSpace(root)
		if trimmed == "" {
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("sandbox.roots: %w", err)
		}
		if _, ok := seen[expanded]; ok {
			continue
		}
		seen[expanded] = struct{}{}
		roots = append(roots, expanded)
	}
	c.Sandbox.Roots = roots
	return nil
}

func (c *Config) normalizeDaemon() error {
	var err error
	if c.Daemon.SocketPath, err = expandPath(strings.TrimSpace(c.Daemon.SocketPath)); err != nil {
		return fmt.Errorf("daemon.socket_path: %w", err)
	}
	if c.Daemon.LockPath, err = expandPath(strings.TrimSpace(c.Daemon.LockPath)); err != nil {
		return fmt.Errorf("daemon.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeAudit() error {
	var err error
	if c.Audit.Path, err = expandPath(strings.TrimSpace(c.Audit.Path)); err != nil {
		return fmt.Errorf("audit.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeClassifier() error {
	if c.Classifier.APIKey == "" {
		if value, ok := os.LookupEnv("FOLIO_CLASSIFIER_API_KEY"); ok {
			c.Classifier.APIKey = strings.TrimSpace(value)
		}
	}
	c.Classifier.BaseURL = strings.TrimSpace(c.Classifier.BaseURL)
	if c.Classifier.BaseURL == "" {
		c.Classifier.BaseURL = defaultClassifierBaseURL
	}
	c.Classifier.Model = strings.TrimSpace(c.Classifier.Model)
	if c.Classifier.Model == "" {
		c.Classifier.Model = defaultClassifierModel
	}
	if c.Classifier.TimeoutSeconds <= 0 {
		c.Classifier.TimeoutSeconds = defaultClassifierTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if expanded, err := expandPath(strings.TrimSpace(c.Logging.Dir)); err == nil {
		c.Logging.Dir = expanded
	}
}

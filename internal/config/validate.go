package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSandbox(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validateAudit(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSandbox() error {
	if len(c.Sandbox.Roots) == 0 {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/folio/config.toml"
		}
		return fmt.Errorf("sandbox.roots requires at least one directory. Edit %s (create with 'folio config init')", defaultPath)
	}
	for _, root := range c.Sandbox.Roots {
		if !filepath.IsAbs(root) {
			return fmt.Errorf("sandbox.roots entry %q must be absolute", root)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateClassifier() error {
	if !c.Classifier.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Classifier.APIKey) == "" {
		return errors.New("classifier.api_key must be set when classifier.enabled is true (or set FOLIO_CLASSIFIER_API_KEY)")
	}
	if strings.TrimSpace(c.Classifier.Model) == "" {
		return errors.New("classifier.model must be set when classifier.enabled is true")
	}
	return nil
}

func (c *Config) validateAudit() error {
	if !c.Audit.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Audit.Path) == "" {
		return errors.New("audit.path must be set when audit.enabled is true")
	}
	return nil
}

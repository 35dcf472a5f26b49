package config

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap/zapcore"

	"github.com/HendryAvila/pyward/internal/extract"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateChecker(); err != nil {
		return err
	}
	if !slices.Contains(extract.EngineValues(), c.Extract.Engine) {
		return fmt.Errorf("extract.engine %q must be one of %v", c.Extract.Engine, extract.EngineValues())
	}
	if c.History.Enabled && c.History.DataDir == "" {
		return errors.New("history.data_dir must be set when history is enabled")
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return c.validateLimits()
}

func (c *Config) validateChecker() error {
	if c.Checker.TimeoutSeconds < 0 {
		return errors.New("checker.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLimits() error {
	if c.Limits.MaxCodeBytes < 0 {
		return errors.New("limits.max_code_bytes must not be negative")
	}
	if c.Limits.MaxScanFiles < 0 {
		return errors.New("limits.max_scan_files must not be negative")
	}
	if c.Limits.MaxFileBytes < 0 {
		return errors.New("limits.max_file_bytes must not be negative")
	}
	return nil
}

package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.Checker.Binary = strings.TrimSpace(c.Checker.Binary)
	if c.Checker.TimeoutSeconds == 0 {
		c.Checker.TimeoutSeconds = defaultTimeoutSeconds
	}

	c.Extract.Engine = strings.ToLower(strings.TrimSpace(c.Extract.Engine))
	if c.Extract.Engine == "" {
		c.Extract.Engine = defaultEngine
	}

	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeHistory() error {
	dir := strings.TrimSpace(c.History.DataDir)
	if dir == "" {
		dir = defaultDataDir
	}
	expanded, err := ExpandPath(dir)
	if err != nil {
		return fmt.Errorf("history data_dir: %w", err)
	}
	c.History.DataDir = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

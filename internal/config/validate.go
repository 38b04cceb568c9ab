package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Scan.Threshold < 0 {
		return errors.New("scan.threshold must not be negative")
	}
	if c.Scan.ProgressEvery < 0 {
		return errors.New("scan.progress_every must not be negative")
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

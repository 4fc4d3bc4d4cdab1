package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateBlacklist(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateCapture() error {
	switch {
	case c.Capture.Interface == "" && c.Capture.ReadFile == "":
		return errors.New("one of capture.interface or capture.read_file must be set")
	case c.Capture.Interface != "" && c.Capture.ReadFile != "":
		return errors.New("capture.interface and capture.read_file are mutually exclusive")
	}
	if c.Capture.SnapLen <= 0 {
		return errors.New("capture.snaplen must be positive")
	}
	if c.Capture.TimeoutMS < 0 {
		return errors.New("capture.timeout_ms must not be negative")
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.Workers < 1 {
		return errors.New("analysis.workers must be at least 1")
	}
	if c.Analysis.HTTPPort < 1 || c.Analysis.HTTPPort > 65535 {
		return fmt.Errorf("analysis.http_port %d out of range", c.Analysis.HTTPPort)
	}
	return nil
}

func (c *Config) validateBlacklist() error {
	seen := make(map[string]struct{}, len(c.Blacklist))
	for i, e := range c.Blacklist {
		if e.Label == "" {
			return fmt.Errorf("blacklist[%d].label must be set", i)
		}
		if e.Host == "" {
			return fmt.Errorf("blacklist[%d].host must be set", i)
		}
		// Hosts are matched byte for byte, so stray spaces would never match.
		if strings.TrimSpace(e.Host) != e.Host {
			return fmt.Errorf("blacklist[%d].host %q has surrounding whitespace", i, e.Host)
		}
		if _, dup := seen[e.Label]; dup {
			return fmt.Errorf("blacklist label %q is defined twice", e.Label)
		}
		seen[e.Label] = struct{}{}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be auto, console or json", c.Logging.Format)
	}
	switch c.Logging.Output {
	case "", "stderr", "stdout":
	default:
		return fmt.Errorf("logging.output %q must be stderr or stdout", c.Logging.Output)
	}
	return nil
}

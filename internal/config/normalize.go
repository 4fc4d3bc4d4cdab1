package config

import (
	"runtime"
	"strings"
)

func (c *Config) normalize() {
	c.Capture.Interface = strings.TrimSpace(c.Capture.Interface)
	c.Capture.ReadFile = strings.TrimSpace(c.Capture.ReadFile)
	c.Capture.BPFFilter = strings.TrimSpace(c.Capture.BPFFilter)
	if c.Capture.SnapLen == 0 {
		c.Capture.SnapLen = defaultSnapLen
	}
	if c.Capture.TimeoutMS == 0 {
		c.Capture.TimeoutMS = defaultTimeoutMS
	}

	if c.Analysis.Workers == 0 {
		c.Analysis.Workers = runtime.NumCPU()
	}
	if c.Analysis.HTTPPort == 0 {
		c.Analysis.HTTPPort = 80
	}

	for i := range c.Blacklist {
		c.Blacklist[i].Label = strings.TrimSpace(c.Blacklist[i].Label)
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Report.HTMLPath = strings.TrimSpace(c.Report.HTMLPath)
}

// Normalize trims values and fills zero settings with defaults. Call it
// again after applying command-line overrides.
func (c *Config) Normalize() {
	c.normalize()
}

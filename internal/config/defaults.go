package config

import (
	"runtime"

	"gonetids/internal/analysis"
	"gonetids/internal/logger"
)

const (
	defaultSnapLen     = 4096
	defaultPromiscuous = true
	defaultTimeoutMS   = 1000
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	rules := analysis.DefaultBlacklist()
	blacklist := make([]BlacklistEntry, len(rules))
	for i, r := range rules {
		blacklist[i] = BlacklistEntry{Label: r.Label, Host: r.Host}
	}

	return Config{
		Capture: Capture{
			SnapLen:     defaultSnapLen,
			Promiscuous: defaultPromiscuous,
			TimeoutMS:   defaultTimeoutMS,
		},
		Analysis: Analysis{
			Workers:  runtime.NumCPU(),
			HTTPPort: analysis.DefaultHTTPPort,
		},
		Blacklist: blacklist,
		Logging:   logger.DefaultConfig(),
	}
}

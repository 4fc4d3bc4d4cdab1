package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"gonetids/internal/analysis"
	"gonetids/internal/logger"
)

//go:embed sample_config.toml
var sampleConfig string

// Capture selects and tunes the frame source.
type Capture struct {
	Interface   string `toml:"interface"`
	ReadFile    string `toml:"read_file"`
	SnapLen     int    `toml:"snaplen"`
	Promiscuous bool   `toml:"promiscuous"`
	TimeoutMS   int    `toml:"timeout_ms"`
	BPFFilter   string `toml:"bpf_filter"`
}

// Analysis sizes the worker pool and tunes detection.
type Analysis struct {
	Workers  int  `toml:"workers"`
	Verbose  bool `toml:"verbose"`
	HTTPPort int  `toml:"http_port"`
}

// BlacklistEntry is one blacklisted host and the label it is reported under.
type BlacklistEntry struct {
	Label string `toml:"label"`
	Host  string `toml:"host"`
}

// Report controls report output besides the terminal summary.
type Report struct {
	HTMLPath string `toml:"html_path"`
}

// UI controls the live dashboard.
type UI struct {
	Dashboard bool `toml:"dashboard"`
}

// Config is the full gonetids configuration.
type Config struct {
	Capture   Capture          `toml:"capture"`
	Analysis  Analysis         `toml:"analysis"`
	Blacklist []BlacklistEntry `toml:"blacklist"`
	Logging   logger.Config    `toml:"logging"`
	Report    Report           `toml:"report"`
	UI        UI               `toml:"ui"`
}

// Load reads path on top of the defaults. An empty path, or a path that
// does not exist, yields the defaults. exists reports whether a file was read.
func Load(path string) (*Config, bool, error) {
	cfg := Default()

	if strings.TrimSpace(path) == "" {
		cfg.normalize()
		return &cfg, false, nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg.normalize()
			return &cfg, false, nil
		}
		return nil, false, fmt.Errorf("read config %s: %w", resolved, err)
	}

	var fileCfg Config
	if err := toml.Unmarshal(data, &fileCfg); err != nil {
		return nil, true, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	// Decode again over the defaults so absent keys keep their default values;
	// the blacklist is replaced wholesale when the file defines one.
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, true, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	if fileCfg.Blacklist != nil {
		cfg.Blacklist = fileCfg.Blacklist
	}

	cfg.normalize()
	return &cfg, true, nil
}

// BlacklistRules converts the configured entries for the analysis engine.
func (c *Config) BlacklistRules() []analysis.BlacklistRule {
	rules := make([]analysis.BlacklistRule, len(c.Blacklist))
	for i, e := range c.Blacklist {
		rules[i] = analysis.BlacklistRule{Label: e.Label, Host: e.Host}
	}
	return rules
}

// AnalysisConfig returns the engine configuration.
func (c *Config) AnalysisConfig() analysis.Config {
	cfg := analysis.DefaultConfig()
	cfg.HTTPPort = uint16(c.Analysis.HTTPPort)
	cfg.Blacklist = c.BlacklistRules()
	return cfg
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	resolved, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(resolved, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if !strings.HasPrefix(pathValue, "~") {
		return filepath.Clean(pathValue), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(pathValue, "~")), nil
}

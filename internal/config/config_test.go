package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonetids/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gonetids.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, exists, err := config.Load("")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Equal(t, 4096, cfg.Capture.SnapLen)
	assert.True(t, cfg.Capture.Promiscuous)
	assert.Equal(t, runtime.NumCPU(), cfg.Analysis.Workers)
	assert.Equal(t, 80, cfg.Analysis.HTTPPort)
	require.Len(t, cfg.Blacklist, 2)
	assert.Equal(t, "google", cfg.Blacklist[0].Label)
	assert.Equal(t, "www.bbc.co.uk", cfg.Blacklist[1].Host)

	// No frame source chosen yet.
	assert.Error(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, config.Default().Capture.SnapLen, cfg.Capture.SnapLen)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[capture]
read_file = " capture.pcap "
promiscuous = false

[analysis]
workers = 3
verbose = true

[[blacklist]]
label = "example"
host = "www.example.com"

[logging]
level = "DEBUG"
format = "json"
`)

	cfg, exists, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "capture.pcap", cfg.Capture.ReadFile)
	assert.False(t, cfg.Capture.Promiscuous)
	assert.Equal(t, 4096, cfg.Capture.SnapLen)
	assert.Equal(t, 3, cfg.Analysis.Workers)
	assert.True(t, cfg.Analysis.Verbose)
	assert.Equal(t, []config.BlacklistEntry{{Label: "example", Host: "www.example.com"}}, cfg.Blacklist)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	ac := cfg.AnalysisConfig()
	assert.Equal(t, uint16(80), ac.HTTPPort)
	require.Len(t, ac.Blacklist, 1)
	assert.Equal(t, "www.example.com", ac.Blacklist[0].Host)
}

func TestLoadRejectsInvalidTOML(t *testing.T) {
	_, _, err := config.Load(writeConfig(t, "[capture\ninterface="))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		cfg := config.Default()
		cfg.Capture.Interface = "eth0"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"both sources", func(c *config.Config) { c.Capture.ReadFile = "x.pcap" }},
		{"no workers", func(c *config.Config) { c.Analysis.Workers = -1 }},
		{"bad port", func(c *config.Config) { c.Analysis.HTTPPort = 70000 }},
		{"bad snaplen", func(c *config.Config) { c.Capture.SnapLen = -5 }},
		{"empty label", func(c *config.Config) { c.Blacklist[0].Label = "" }},
		{"empty host", func(c *config.Config) { c.Blacklist[1].Host = "" }},
		{"padded host", func(c *config.Config) { c.Blacklist[1].Host = " www.bbc.co.uk" }},
		{"duplicate label", func(c *config.Config) { c.Blacklist[1].Label = c.Blacklist[0].Label }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"bad log output", func(c *config.Config) { c.Logging.Output = "file" }},
	}

	base := valid()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadKeepsBlacklistHostVerbatim(t *testing.T) {
	path := writeConfig(t, `
[capture]
interface = "eth0"

[[blacklist]]
label = " padded "
host = "www.example.com "
`)

	cfg, _, err := config.Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Blacklist, 1)
	assert.Equal(t, "padded", cfg.Blacklist[0].Label)
	assert.Equal(t, "www.example.com ", cfg.Blacklist[0].Host)
	assert.ErrorContains(t, cfg.Validate(), "surrounding whitespace")
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gonetids.toml")
	require.NoError(t, config.CreateSample(path))

	cfg, exists, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "eth0", cfg.Capture.Interface)
	assert.Len(t, cfg.Blacklist, 2)
}

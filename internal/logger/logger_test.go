package logger

import (
	"bytes"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	err := Init(Config{Level: "debug", Output: "stderr", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel())

	err = Init(Config{Debug: true, Level: "error", Format: "console"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel())

	SetLevel(zerolog.InfoLevel)
	assert.Equal(t, zerolog.InfoLevel, GetLogger().GetLevel())
}

func TestInitRejectsBadConfig(t *testing.T) {
	assert.Error(t, Init(Config{Level: "loud"}))
	assert.Error(t, Init(Config{Level: "info", Format: "xml"}))
}

func TestDefaultConfigHonoursEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")

	cfg := DefaultConfig()
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
}

func TestWithComponent(t *testing.T) {
	componentLogger := WithComponent("dispatch")
	assert.NotEqual(t, zerolog.Disabled, componentLogger.GetLevel())
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestDiagnosticsFlushOnClose(t *testing.T) {
	var out lockedBuffer
	diag, log := NewDiagnostics(&out, 64)

	log.Info().Str("event", "frame").Msg("Decoded frame")
	require.NoError(t, diag.Close())

	assert.Contains(t, out.String(), `"event":"frame"`)
	assert.Zero(t, diag.Dropped())
}

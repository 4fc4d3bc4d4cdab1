// Package logger provides structured logging using zerolog.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var globalLogger zerolog.Logger

// Config selects the level, destination and encoding of log output.
type Config struct {
	Level  string `toml:"level"`
	Debug  bool   `toml:"debug"`
	Output string `toml:"output"` // "stderr" or "stdout"
	Format string `toml:"format"` // "auto", "console" or "json"
}

func init() {
	globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.TimeFieldFormat = time.RFC3339
}

// DefaultConfig returns the configuration used when nothing is set,
// honouring LOG_LEVEL, LOG_OUTPUT and LOG_FORMAT.
func DefaultConfig() Config {
	return Config{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Debug:  false,
		Output: getEnvOrDefault("LOG_OUTPUT", "stderr"),
		Format: getEnvOrDefault("LOG_FORMAT", "auto"),
	}
}

// Init replaces the global logger according to config.
func Init(config Config) error {
	out := outputFor(config.Output)

	level := zerolog.InfoLevel
	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(strings.ToLower(config.Level))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", config.Level, err)
		}
	}

	w, err := encoderFor(config.Format, out)
	if err != nil {
		return err
	}

	globalLogger = zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()

	log.Logger = globalLogger

	return nil
}

func outputFor(name string) *os.File {
	if name == "stdout" {
		return os.Stdout
	}
	return os.Stderr
}

func encoderFor(format string, out *os.File) (io.Writer, error) {
	switch format {
	case "", "auto":
		if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
			return consoleWriter(out), nil
		}
		return out, nil
	case "console":
		return consoleWriter(out), nil
	case "json":
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
}

// SetLevel changes the level of the global logger.
func SetLevel(level zerolog.Level) {
	globalLogger = globalLogger.Level(level)
	log.Logger = globalLogger
}

// GetLogger returns the global logger.
func GetLogger() zerolog.Logger {
	return globalLogger
}

// WithComponent returns a child of the global logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return globalLogger.With().Str("component", component).Logger()
}

func Info() *zerolog.Event {
	return globalLogger.Info()
}

func Warn() *zerolog.Event {
	return globalLogger.Warn()
}

func Error() *zerolog.Event {
	return globalLogger.Error()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package infra

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger aliases zerolog.Logger so packages can accept a logger without
// importing the third-party module directly.
type Logger = zerolog.Logger

// NewLogger builds the process logger. Output always goes to stderr because
// stdout carries the MCP protocol stream.
func NewLogger(cfg *Config) Logger {
	return newLogger(os.Stderr, cfg)
}

func newLogger(w io.Writer, cfg *Config) Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	out := w
	if cfg.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("component", "minimax-mcp").
		Logger()
}

// NopLogger returns a logger that discards everything. Used by tests and as
// the fallback when a component is constructed without one.
func NopLogger() Logger {
	return zerolog.Nop()
}

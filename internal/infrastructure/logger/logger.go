package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the level and encoding of the process logger.
type Config struct {
	Level   string // trace, debug, info, warn, error
	Format  string // json, console
	Service string // stamped on every line; defaults to "pocketledger"
}

// New creates the process logger writing to stdout.
func New(cfg Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter creates the process logger writing to out.
func NewWithWriter(cfg Config, out io.Writer) zerolog.Logger {
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	service := cfg.Service
	if service == "" {
		service = "pocketledger"
	}

	return zerolog.New(out).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}

// WithOwner tags the context logger with the owner every ledger call is scoped to.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	l := zerolog.Ctx(ctx).With().Str("owner_id", ownerID).Logger()
	return l.WithContext(ctx)
}

// parseLevel falls back to info for empty or unknown names.
func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

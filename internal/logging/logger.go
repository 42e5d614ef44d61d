// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging configures the process-wide zerolog logger and carries a
// per-turn correlation id through context so every log line of one chat
// turn can be grouped.
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	ctx = logging.ContextWithNewTurnID(ctx)
//	logging.Ctx(ctx).Warn().Err(err).Msg("catalog lookup failed")
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config holds logger settings.
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error.
	Level string
	// Format is json or console.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

var (
	mu  sync.RWMutex
	log = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Init replaces the global logger. It is safe to call more than once.
func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	out := cfg.Output
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339

	mu.Lock()
	defer mu.Unlock()
	log = zerolog.New(out).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns a copy of the global logger.
func Logger() *zerolog.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()
	return &l
}

// SetLogger replaces the global logger. Tests use it to capture output.
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
}

type ctxKey string

const turnIDKey ctxKey = "turn_id"

// ContextWithTurnID stores a turn id in ctx.
func ContextWithTurnID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, turnIDKey, id)
}

// ContextWithNewTurnID stores a fresh short turn id in ctx.
func ContextWithNewTurnID(ctx context.Context) context.Context {
	return ContextWithTurnID(ctx, uuid.NewString()[:8])
}

// TurnIDFromContext returns the turn id, or "" if none is set.
func TurnIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(turnIDKey).(string)
	return id
}

// Ctx returns the global logger with the turn id of ctx attached.
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger()
	if id := TurnIDFromContext(ctx); id != "" {
		child := l.With().Str("turn_id", id).Logger()
		return &child
	}
	return l
}

// Component returns a child logger tagged with a component name.
func Component(ctx context.Context, name string) *zerolog.Logger {
	l := Ctx(ctx).With().Str("component", name).Logger()
	return &l
}

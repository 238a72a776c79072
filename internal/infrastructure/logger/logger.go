package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the log level and output encoding. Output defaults to stdout.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output io.Writer
}

type ctxKey struct{}

// scope holds the per-request values stamped on every log line.
type scope struct {
	requestID string
	userID    string
}

func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(levelOf(cfg.Level)).
		With().
		Timestamp().
		Str("service", "transferhub").
		Caller().
		Logger()
}

// levelOf maps a configured level name to zerolog, defaulting to info.
func levelOf(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func scopeOf(ctx context.Context) scope {
	if ctx == nil {
		return scope{}
	}
	s, _ := ctx.Value(ctxKey{}).(scope)
	return s
}

// ContextWithRequestID stores the request id for later log lines.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	s := scopeOf(ctx)
	s.requestID = requestID
	return context.WithValue(ctx, ctxKey{}, s)
}

// ContextWithUserID stores the acting user id for later log lines.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	s := scopeOf(ctx)
	s.userID = userID
	return context.WithValue(ctx, ctxKey{}, s)
}

func RequestID(ctx context.Context) string {
	return scopeOf(ctx).requestID
}

func UserID(ctx context.Context) string {
	return scopeOf(ctx).userID
}

// WithContext returns l carrying the request and user ids found in ctx.
func WithContext(ctx context.Context, l zerolog.Logger) zerolog.Logger {
	s := scopeOf(ctx)
	if s == (scope{}) {
		return l
	}

	c := l.With()
	if s.requestID != "" {
		c = c.Str("request_id", s.requestID)
	}
	if s.userID != "" {
		c = c.Str("user_id", s.userID)
	}
	return c.Logger()
}

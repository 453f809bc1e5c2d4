package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type ctxLoggerKey struct {
	Key string
}

var (
	cKey       = ctxLoggerKey{Key: "logger"}
	sessionKey = ctxLoggerKey{Key: "session"}
)

// Options selects the handler built by New.
type Options struct {
	Level  string
	Format string
}

// New builds the root logger. Format "json" selects slog's JSON handler, anything
// else the colored console handler.
func New(w io.Writer, opts Options) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	if strings.EqualFold(opts.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(NewPrettyHandler(w, hopts))
}

// ParseLevel maps debug/info/warn/error onto slog levels; unknown values are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything. Used by tests and by components
// constructed without a logger.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func GetLoggerFromContext(ctx context.Context) *slog.Logger {
	var l *slog.Logger

	if v, ok := ctx.Value(cKey).(*slog.Logger); ok && v != nil {
		l = v
	} else {
		l = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	if id := GetSessionFromCtx(ctx); id != "" {
		l = l.With(slog.String("session", id))
	}
	return l
}

// GetLoggerFromContextWithOp returns the context logger with an "op" attribute.
func GetLoggerFromContextWithOp(ctx context.Context, op string) *slog.Logger {
	return GetLoggerFromContext(ctx).With(slog.String("op", op))
}

func MakeContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, cKey, logger)
}

// Err wraps an error as a slog attribute.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

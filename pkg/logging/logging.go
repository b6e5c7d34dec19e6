package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type ctxKey struct{}

type Options struct {
	Level string
	// File enables a rotating JSON log file next to stdout.
	File string
}

func New(opts Options) *slog.Logger {
	return NewWithWriter(opts, os.Stdout)
}

func NewWithWriter(opts Options, out io.Writer) *slog.Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(ParseLevel(opts.Level))

	if opts.File != "" {
		out = io.MultiWriter(out, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     30,
			Compress:   true,
		})
	}

	h := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl})
	return slog.New(h)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func IntoContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

func FromContext(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}

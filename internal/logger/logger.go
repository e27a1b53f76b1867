// Package logger builds the console logger shared through context.Context.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/lmittmann/tint"
)

// New returns a logger writing tint-formatted records to w.
func New(w io.Writer, level slog.Level, noColor bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	}))
}

// WithContext attaches l to ctx for clog.FromContext and makes it the slog default.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	slog.SetDefault(l)
	return clog.WithLogger(ctx, clog.NewLogger(l))
}

// ParseLevel accepts the slog level names (debug, info, warn, error).
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

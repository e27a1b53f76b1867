package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/chainguard-dev/clog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    slog.Level
		expectError bool
	}{
		{name: "debug", input: "debug", expected: slog.LevelDebug},
		{name: "upper case", input: "WARN", expected: slog.LevelWarn},
		{name: "padded", input: " error ", expected: slog.LevelError},
		{name: "unknown", input: "verbose", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), New(&buf, slog.LevelInfo, true))
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil))) })

	clog.FromContext(ctx).Debug("hidden")
	clog.FromContext(ctx).With("branch", "bump-new-version").Infof("pushed %d files", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record should be filtered: %q", out)
	}
	if !strings.Contains(out, "pushed 3 files") || !strings.Contains(out, "branch=bump-new-version") {
		t.Errorf("unexpected output %q", out)
	}
}

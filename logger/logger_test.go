package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultLoggerIsSilent(t *testing.T) {
	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("expected default logger to be disabled")
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(New(&buf, "warn"))
	defer SetLogger(nil)

	Logger().Info("hidden")
	Logger().Warn("shown", "id", 7)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered at warn level, got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "id=7") {
		t.Errorf("expected warn record with attrs, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

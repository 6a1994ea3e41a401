package logging

import (
	"log/slog"
	"testing"
)

func TestNewRespectsLevel(t *testing.T) {
	cases := []struct {
		level   string
		enabled slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tc := range cases {
		logger := New(tc.level)
		if logger == nil {
			t.Fatalf("New(%q) returned nil", tc.level)
		}
		if !logger.Enabled(nil, tc.enabled) {
			t.Errorf("New(%q): expected level %v to be enabled", tc.level, tc.enabled)
		}
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil {
		t.Fatal("Default returned nil")
	}
	if logger.Enabled(nil, slog.LevelDebug) {
		t.Error("default logger should not enable debug level")
	}
}

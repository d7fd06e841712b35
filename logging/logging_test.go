package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFanout(t *testing.T) {
	var debug, warn bytes.Buffer
	h := fanout{
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}
	logger := slog.New(h).With("job", "billing")

	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("fanout should accept the lowest level of its handlers")
	}

	logger.Debug("tick")
	logger.Warn("gateway down")

	if !strings.Contains(debug.String(), "tick") || !strings.Contains(debug.String(), "gateway down") {
		t.Errorf("debug handler got %q", debug.String())
	}
	if strings.Contains(warn.String(), "tick") || !strings.Contains(warn.String(), "job=billing") {
		t.Errorf("warn handler got %q", warn.String())
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(slog.LevelInfo, "json", &buf)
	log.Debug("hidden")
	log.Info("task added", "id", 3)

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "hidden") {
		t.Fatalf("debug record written at info level: %s", line)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("Unmarshal: %v (%s)", err, line)
	}
	if rec["msg"] != "task added" {
		t.Errorf("msg = %v, want %q", rec["msg"], "task added")
	}
	if rec["id"] != float64(3) {
		t.Errorf("id = %v, want 3", rec["id"])
	}
}

func TestNewLoggerWithWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(slog.LevelDebug, "text", &buf)
	log.Debug("task started", "task", "blink")

	if !strings.Contains(buf.String(), "msg=\"task started\"") || !strings.Contains(buf.String(), "task=blink") {
		t.Errorf("unexpected text output: %s", buf.String())
	}
}

package sched

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yml")} {
		if got := Load(path); got != DefaultConfig() {
			t.Errorf("Load(%q) = %+v, want defaults", path, got)
		}
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := "max_tasks: 4\nclock_hz: 1000\nsleep_max_seconds: 60\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := Load(path)
	if cfg.MaxTasks != 4 || cfg.ClockHz != 1000 || cfg.SleepMaxSeconds != 60 {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "text" {
		t.Errorf("log settings = %q/%q, want debug/text", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoad_ClampsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("max_tasks: -3\nclock_hz: 0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := Load(path)
	def := DefaultConfig()
	if cfg.MaxTasks != def.MaxTasks || cfg.ClockHz != def.ClockHz {
		t.Errorf("Load() = %+v, want clamped to defaults", cfg)
	}
}

func TestConfig_MaxSleepTicks(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want uint32
	}{
		{"default", DefaultConfig(), 1800000000},
		{"one second at 1kHz", Config{ClockHz: 1000, SleepMaxSeconds: 1}, 1000},
		{"beyond signed window", Config{ClockHz: 1000000, SleepMaxSeconds: 3600}, math.MaxInt32},
		{"overflow", Config{ClockHz: math.MaxUint64, SleepMaxSeconds: 10}, math.MaxInt32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.maxSleepTicks(); got != tt.want {
				t.Errorf("maxSleepTicks() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConfig_UsToTicks(t *testing.T) {
	cfg := Config{ClockHz: 1000}
	if got := cfg.usToTicks(1500); got != 1 {
		t.Errorf("usToTicks(1500) at 1kHz = %d, want 1", got)
	}
	cfg.ClockHz = 1000000
	if got := cfg.usToTicks(250); got != 250 {
		t.Errorf("usToTicks(250) at 1MHz = %d, want 250", got)
	}
	cfg.ClockHz = math.MaxUint64
	if got := cfg.usToTicks(math.MaxUint64); got != math.MaxUint64 {
		t.Errorf("usToTicks overflow = %d, want saturation", got)
	}
}

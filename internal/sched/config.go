package sched

import (
	"math"
	"math/bits"
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Config mirrors config.yml
type Config struct {
	MaxTasks        int    `yaml:"max_tasks"`         // 20 (by default), includes the entry task
	ClockHz         uint64 `yaml:"clock_hz"`          // 1000000 (by default)
	SleepMaxSeconds uint   `yaml:"sleep_max_seconds"` // 1800 (by default)
	LogLevel        string `yaml:"log_level"`         // info (by default)
	LogFormat       string `yaml:"log_format"`        // text (by default)
}

// If the config file is not found, we use default values
func DefaultConfig() Config {
	return Config{
		MaxTasks:        20,
		ClockHz:         1000000,
		SleepMaxSeconds: 1800,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load reads YAML and overrides defaults; empty path = defaults only
func Load(path string) Config {
	cfg := DefaultConfig()

	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)

	return cfg.sanitized()
}

// sanitized applies the sanity clamps to a config.
func (cfg Config) sanitized() Config {
	def := DefaultConfig()
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = def.MaxTasks
	}
	if cfg.ClockHz == 0 {
		cfg.ClockHz = def.ClockHz
	}
	if cfg.SleepMaxSeconds == 0 {
		cfg.SleepMaxSeconds = def.SleepMaxSeconds
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = def.LogFormat
	}
	return cfg
}

// maxSleepTicks is the longest wait a single deadline may cover. It stays
// inside the positive int32 range so Due never sees a wrapped difference.
func (cfg Config) maxSleepTicks() uint32 {
	hi, ticks := bits.Mul64(uint64(cfg.SleepMaxSeconds), cfg.ClockHz)
	if hi != 0 || ticks == 0 || ticks > math.MaxInt32 {
		return math.MaxInt32
	}
	return uint32(ticks)
}

// usToTicks converts microseconds to ticks at the configured clock rate.
func (cfg Config) usToTicks(us uint64) uint64 {
	hi, lo := bits.Mul64(us, cfg.ClockHz)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo / 1000000
}

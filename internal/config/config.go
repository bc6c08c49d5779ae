// Package config loads runtime settings from a .env file and CHECKERS_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/michalgawin/checkers/internal/engine"
	"github.com/michalgawin/checkers/internal/pool"
)

// Environment variable names.
const (
	EnvDepth      = "CHECKERS_DEPTH"
	EnvWorkers    = "CHECKERS_WORKERS"
	EnvCacheMB    = "CHECKERS_CACHE_MB"
	EnvDataDir    = "CHECKERS_DATA_DIR"
	EnvLogLevel   = "CHECKERS_LOG_LEVEL"
	EnvLogPretty  = "CHECKERS_LOG_PRETTY"
	EnvDifficulty = "CHECKERS_DIFFICULTY"
)

// Config holds the runtime settings.
type Config struct {
	Depth      int // search depth in plies; negative uses the difficulty preset
	Workers    int
	CacheMB    int
	DataDir    string // empty = platform data directory
	LogLevel   string
	LogPretty  bool
	Difficulty engine.Difficulty
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Depth:      -1,
		Workers:    pool.DefaultWorkers,
		CacheMB:    16,
		LogLevel:   "info",
		LogPretty:  true,
		Difficulty: engine.Medium,
	}
}

// Load reads the given .env files (".env" when none are given) and then the
// environment. Missing files are ignored; variables already set in the
// environment win over file entries.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from defaults overridden by the environment.
func FromEnv() (Config, error) {
	cfg := Default()

	if err := intVar(EnvDepth, &cfg.Depth); err != nil {
		return cfg, err
	}
	if cfg.Depth > engine.MaxDepth {
		return cfg, fmt.Errorf("%s: depth %d exceeds %d", EnvDepth, cfg.Depth, engine.MaxDepth)
	}
	if err := intVar(EnvWorkers, &cfg.Workers); err != nil {
		return cfg, err
	}
	if cfg.Workers < 1 {
		return cfg, fmt.Errorf("%s: need at least 1 worker, got %d", EnvWorkers, cfg.Workers)
	}
	if err := intVar(EnvCacheMB, &cfg.CacheMB); err != nil {
		return cfg, err
	}
	if cfg.CacheMB < 1 {
		return cfg, fmt.Errorf("%s: need at least 1 MB, got %d", EnvCacheMB, cfg.CacheMB)
	}

	if v, ok := lookup(EnvDataDir); ok {
		cfg.DataDir = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvLogPretty); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvLogPretty, err)
		}
		cfg.LogPretty = b
	}
	if v, ok := lookup(EnvDifficulty); ok {
		d, err := engine.ParseDifficulty(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvDifficulty, err)
		}
		cfg.Difficulty = d
	}
	return cfg, nil
}

// SearchDepth resolves the depth to search: the explicit depth when set,
// else the difficulty preset.
func (c Config) SearchDepth() int {
	if c.Depth >= 0 {
		return c.Depth
	}
	return engine.DifficultySettings[c.Difficulty].Depth
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func intVar(key string, dst *int) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}

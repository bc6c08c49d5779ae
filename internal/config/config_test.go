package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michalgawin/checkers/internal/engine"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvDepth, EnvWorkers, EnvCacheMB, EnvDataDir, EnvLogLevel, EnvLogPretty, EnvDifficulty} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 4, cfg.SearchDepth(), "medium preset")
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDepth, "3")
	t.Setenv(EnvWorkers, "8")
	t.Setenv(EnvCacheMB, "32")
	t.Setenv(EnvDataDir, "/tmp/checkers")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogPretty, "false")
	t.Setenv(EnvDifficulty, "hard")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.SearchDepth())
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 32, cfg.CacheMB)
	assert.Equal(t, "/tmp/checkers", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, engine.Hard, cfg.Difficulty)
}

func TestDepthZeroIsExplicit(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDepth, "0")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.SearchDepth())
}

func TestInvalidValues(t *testing.T) {
	tests := map[string]string{
		EnvDepth:      "deep",
		EnvWorkers:    "0",
		EnvCacheMB:    "-1",
		EnvLogPretty:  "maybe",
		EnvDifficulty: "nightmare",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}

	clearEnv(t)
	t.Setenv(EnvDepth, "13")
	_, err := FromEnv()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv(EnvCacheMB, "0")
	_, err = FromEnv()
	assert.ErrorContains(t, err, EnvCacheMB)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv(EnvWorkers)
	os.Unsetenv(EnvDifficulty)

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CHECKERS_WORKERS=2\nCHECKERS_DIFFICULTY=easy\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv(EnvWorkers)
		os.Unsetenv(EnvDifficulty)
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, engine.Easy, cfg.Difficulty)
	assert.Equal(t, 2, cfg.SearchDepth())
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ko-stant/dungeon-builder/internal/dungeon"
)

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupMap(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Nil(t, cfg.Seed)
	assert.Empty(t, cfg.LevelFiles)
	assert.Equal(t, dungeon.DefaultSettings(), cfg.Settings)
}

func TestFromLookup_Values(t *testing.T) {
	cfg, err := FromLookup(lookupMap(map[string]string{
		"APP_PORT":             "9000",
		"LEVEL_FILE":           "levels/one.yaml, levels/two.yaml,",
		"DUNGEON_SEED":         "-12",
		"LOG_LEVEL":            "debug",
		"LOG_FORMAT":           "json",
		"MAX_BUILD_ATTEMPTS":   "4",
		"MAX_REBUILD_ATTEMPTS": "50",
	}))
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"levels/one.yaml", "levels/two.yaml"}, cfg.LevelFiles)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(-12), *cfg.Seed)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, dungeon.Settings{MaxBuildAttempts: 4, MaxRebuildAttemptsPerGraph: 50}, cfg.Settings)
}

func TestFromLookup_ReportsEveryBadValue(t *testing.T) {
	_, err := FromLookup(lookupMap(map[string]string{
		"DUNGEON_SEED":         "abc",
		"MAX_BUILD_ATTEMPTS":   "0",
		"MAX_REBUILD_ATTEMPTS": "many",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DUNGEON_SEED")
	assert.Contains(t, err.Error(), "MAX_BUILD_ATTEMPTS: must be positive")
	assert.Contains(t, err.Error(), "MAX_REBUILD_ATTEMPTS")
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DUNGEON_BUILDER_TEST_ONLY=1\nMAX_BUILD_ATTEMPTS=7\n"), 0o644))
	t.Setenv("MAX_REBUILD_ATTEMPTS", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Settings.MaxRebuildAttemptsPerGraph, "process environment wins")
	if _, set := os.LookupEnv("MAX_BUILD_ATTEMPTS"); !set {
		assert.Equal(t, 7, cfg.Settings.MaxBuildAttempts)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

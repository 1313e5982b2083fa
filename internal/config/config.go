package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Ko-stant/dungeon-builder/internal/dungeon"
)

const DefaultPort = "8080"

type Config struct {
	Port string
	// LevelFiles are played in order. Empty means the built-in dev level.
	LevelFiles []string
	// Seed is nil when DUNGEON_SEED is unset, in which case a fresh seed is
	// drawn at startup.
	Seed      *int64
	LogLevel  string
	LogFormat string
	Settings  dungeon.Settings
}

// Load reads configuration from the environment. Values in envFile (".env"
// when empty) fill in variables that are not already set; a missing file is
// not an error.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	fileVars, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	})
}

// FromLookup builds a Config from a variable lookup such as os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := Config{
		Port:      get("APP_PORT"),
		LogLevel:  get("LOG_LEVEL"),
		LogFormat: get("LOG_FORMAT"),
		Settings:  dungeon.DefaultSettings(),
	}
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}

	for _, f := range strings.Split(get("LEVEL_FILE"), ",") {
		if f = strings.TrimSpace(f); f != "" {
			cfg.LevelFiles = append(cfg.LevelFiles, f)
		}
	}

	var errs []error
	if s := get("DUNGEON_SEED"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("DUNGEON_SEED: %w", err))
		} else {
			cfg.Seed = &seed
		}
	}
	if n, err := positiveInt(get("MAX_BUILD_ATTEMPTS")); err != nil {
		errs = append(errs, fmt.Errorf("MAX_BUILD_ATTEMPTS: %w", err))
	} else if n > 0 {
		cfg.Settings.MaxBuildAttempts = n
	}
	if n, err := positiveInt(get("MAX_REBUILD_ATTEMPTS")); err != nil {
		errs = append(errs, fmt.Errorf("MAX_REBUILD_ATTEMPTS: %w", err))
	} else if n > 0 {
		cfg.Settings.MaxRebuildAttemptsPerGraph = n
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// positiveInt parses s, returning 0 for an empty string.
func positiveInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}

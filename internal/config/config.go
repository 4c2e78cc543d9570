// Package config assembles client configuration from the environment.
// Every key is MEALFORGE_ plus the screaming-snake form of the field name,
// so apiBaseURL is read from MEALFORGE_API_BASE_URL.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iancoleman/strcase"

	"github.com/mealforge/mealforge-go/pkg/env"
	"github.com/mealforge/mealforge-go/pkg/log"
)

const (
	envPrefix = "MEALFORGE"

	defaultBaseURL        = "http://localhost:8590"
	defaultRequestTimeout = 15 * time.Second
)

type Config struct {
	APIBaseURL     string
	StatePath      string
	RequestTimeout time.Duration
	LogLevel       log.Level
}

func Load() Config {
	return Config{
		APIBaseURL:     env.ParseStringDefault(envKey("apiBaseURL"), defaultBaseURL),
		StatePath:      env.ParseStringDefault(envKey("statePath"), defaultStatePath()),
		RequestTimeout: env.ParseDurationDefault(envKey("requestTimeout"), defaultRequestTimeout),
		LogLevel:       logLevel(),
	}
}

func envKey(name string) string {
	return fmt.Sprintf("%s_%s", envPrefix, strcase.ToScreamingSnake(name))
}

func defaultStatePath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mealforge", "state.json")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".mealforge", "state.json")
	}
	return filepath.Join(home, ".config", "mealforge", "state.json")
}

func logLevel() log.Level {
	switch env.ParseStringDefault(envKey("logLevel"), "disabled") {
	case "debug":
		return log.LevelDebug
	case "info":
		return log.LevelInfo
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelDisabled
	}
}

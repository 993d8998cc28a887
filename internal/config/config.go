// Package config resolves runtime settings from a .env file and the
// environment. Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvDB       = "LINENAUDIT_DB"
	EnvRules    = "LINENAUDIT_RULES"
	EnvLogLevel = "LINENAUDIT_LOG_LEVEL"
)

// DefaultDB is the SQLite file used when LINENAUDIT_DB is unset.
const DefaultDB = "linenaudit.db"

// Config holds resolved settings.
type Config struct {
	// DB is a SQLite path or a postgres:// DSN.
	DB string

	// RulesPath is a .cue, .yaml or .yml rules file. Empty means built-in rules.
	RulesPath string

	// LogLevel is the minimum level written to stderr.
	LogLevel slog.Level
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{DB: DefaultDB, LogLevel: slog.LevelInfo}
}

// Load reads the given .env files (".env" when none are named) into the
// process environment and resolves the settings. A missing .env file is not
// an error. Variables already set in the environment take precedence over
// the file.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv resolves settings through lookup.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if v, ok := lookup(EnvDB); ok && strings.TrimSpace(v) != "" {
		cfg.DB = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvRules); ok {
		cfg.RulesPath = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		level, err := ParseLevel(v)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = level
	}
	return cfg, nil
}

// ParseLevel parses debug, info, warn or error (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be debug, info, warn or error", EnvLogLevel, s)
	}
	return level, nil
}

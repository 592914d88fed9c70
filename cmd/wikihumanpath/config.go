package main

import (
	"os"

	"github.com/rs/zerolog"

	"wikihumanpath/internal/config"
)

// loadConfig layers the config file and environment first, then applies
// whatever the CLI flags explicitly set on top, per SPEC_FULL.md §9's
// priority order (defaults < YAML < env < flags).
func loadConfig(flags *rootFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}

	if flags.cacheDir != "" {
		cfg.CacheDir = flags.cacheDir
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}

	return cfg, cfg.Validate()
}

// newLogger builds the console-friendly zerolog logger every subcommand
// shares, matching the level the resolved Config carries.
func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Package config loads dataset build settings from layered sources:
// struct defaults, an optional YAML file, then NFTSETS_* environment
// variables. Precedence: env > file > defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix recognized on configuration environment variables.
const EnvPrefix = "NFTSETS_"

// Collections lists the supported NFT collections, processed independently.
var Collections = []string{"azuki", "bayc", "coolcats", "doodles"}

// Config holds one pipeline run's settings.
type Config struct {
	// Collection is one of Collections, or "all" to run every collection.
	Collection string `koanf:"collection" validate:"required,oneof=azuki bayc coolcats doodles all"`

	// DataDir holds the raw inputs, one subdirectory per collection.
	DataDir string `koanf:"data_dir" validate:"required"`

	// OutDir receives the artifact set, one subdirectory per collection.
	OutDir string `koanf:"out_dir" validate:"required"`

	// UserCut is the minimum interaction count a user must retain after
	// feature-presence filtering.
	UserCut int `koanf:"user_cut" validate:"min=1"`

	// Holdout is the per-user fraction of rows withheld from train.
	Holdout float64 `koanf:"holdout" validate:"gt=0,lt=1"`

	// Seed fixes the split sampling. Two runs with the same seed and the
	// same inputs produce byte-identical artifacts.
	Seed int64 `koanf:"seed"`

	// Width overrides the broadcast width for scalar item features.
	// Zero means use the image embedding width.
	Width int `koanf:"width" validate:"min=0"`

	// FailFast aborts an "all" run at the first collection failure.
	FailFast bool `koanf:"fail_fast"`

	Logging LoggingConfig `koanf:"logging"`
}

// LoggingConfig mirrors logging.Config for the loaded settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `koanf:"format" validate:"omitempty,oneof=console json"`
}

// Default returns the built-in defaults. Collection is left empty so a run
// must name its target explicitly.
func Default() Config {
	return Config{
		DataDir: "data",
		OutDir:  "out",
		UserCut: 5,
		Holdout: 0.4,
		Seed:    2022,
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Load builds a Config from defaults, the YAML file at path (optional,
// skipped when path is empty or missing) and NFTSETS_* environment
// variables. Callers merge their flag overrides on top and then call
// Validate; flags outrank the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// envTransform maps environment variable names to config paths:
//
//	NFTSETS_USER_CUT   -> user_cut
//	NFTSETS_LOG_LEVEL  -> logging.level
//	NFTSETS_LOG_FORMAT -> logging.format
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	switch key {
	case "log_level":
		return "logging.level"
	case "log_format":
		return "logging.format"
	}
	return key
}

// Targets returns the collections this config selects, in canonical order.
func (c *Config) Targets() []string {
	if c.Collection == "all" {
		out := make([]string, len(Collections))
		copy(out, Collections)
		return out
	}
	return []string{c.Collection}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NFTSETS_COLLECTION", "azuki")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UserCut != 5 {
		t.Errorf("expected default user_cut 5, got %d", cfg.UserCut)
	}
	if cfg.Holdout != 0.4 {
		t.Errorf("expected default holdout 0.4, got %v", cfg.Holdout)
	}
	if cfg.Seed != 2022 {
		t.Errorf("expected default seed 2022, got %d", cfg.Seed)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %q", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults with a collection should validate: %v", err)
	}
}

func TestValidateMissingCollection(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing collection")
	}
	if !strings.Contains(err.Error(), "collection is required") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nftsets.yaml")
	yaml := "collection: bayc\nuser_cut: 3\nholdout: 0.25\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Collection != "bayc" {
		t.Errorf("expected collection bayc, got %q", cfg.Collection)
	}
	if cfg.UserCut != 3 {
		t.Errorf("expected user_cut 3, got %d", cfg.UserCut)
	}
	if cfg.Holdout != 0.25 {
		t.Errorf("expected holdout 0.25, got %v", cfg.Holdout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.Logging.Level)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nftsets.yaml")
	if err := os.WriteFile(path, []byte("collection: bayc\nuser_cut: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NFTSETS_USER_CUT", "9")
	t.Setenv("NFTSETS_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UserCut != 9 {
		t.Errorf("env should override file, expected user_cut 9, got %d", cfg.UserCut)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %q", cfg.Logging.Level)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown collection", func(c *Config) { c.Collection = "punks" }, "collection must be one of"},
		{"zero user cut", func(c *Config) { c.UserCut = 0 }, "usercut must be at least 1"},
		{"holdout too large", func(c *Config) { c.Holdout = 1.0 }, "holdout must be less than 1"},
		{"holdout zero", func(c *Config) { c.Holdout = 0 }, "holdout must be greater than 0"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "level must be one of"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Collection = "azuki"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestTargets(t *testing.T) {
	cfg := Default()
	cfg.Collection = "all"
	got := cfg.Targets()
	if len(got) != 4 {
		t.Fatalf("expected 4 targets, got %d", len(got))
	}
	want := []string{"azuki", "bayc", "coolcats", "doodles"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("target %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	cfg.Collection = "doodles"
	got = cfg.Targets()
	if len(got) != 1 || got[0] != "doodles" {
		t.Errorf("expected single target doodles, got %v", got)
	}
}

func TestEnvTransform(t *testing.T) {
	cases := map[string]string{
		"NFTSETS_COLLECTION": "collection",
		"NFTSETS_USER_CUT":   "user_cut",
		"NFTSETS_LOG_LEVEL":  "logging.level",
		"NFTSETS_LOG_FORMAT": "logging.format",
		"NFTSETS_DATA_DIR":   "data_dir",
	}
	for in, want := range cases {
		if got := envTransform(in); got != want {
			t.Errorf("envTransform(%q) = %q, want %q", in, got, want)
		}
	}
}

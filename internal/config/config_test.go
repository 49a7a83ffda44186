package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Import.Threads <= 0 {
		t.Error("expected positive default thread count")
	}
	if !cfg.Import.Autotag {
		t.Error("expected autotag enabled by default")
	}
}

func TestLoadParsesAndExpands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
library_dir = "` + filepath.Join(dir, "library") + `"
state_dir = "` + filepath.Join(dir, "state") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[import]
threads = 2
strong_match_threshold = 0.25
duplicate_action = "SKIP"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config to exist")
	}
	if resolved != path {
		t.Errorf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Import.Threads != 2 {
		t.Errorf("threads = %d, want 2", cfg.Import.Threads)
	}
	if cfg.Import.DuplicateAction != "skip" {
		t.Errorf("duplicate_action = %q, want skip (normalized)", cfg.Import.DuplicateAction)
	}
	if cfg.Import.QueueSize != defaultImportQueueSize {
		t.Errorf("queue_size = %d, want default %d", cfg.Import.QueueSize, defaultImportQueueSize)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	cfg, _, exists, err := Load(missing)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config")
	}
	if cfg.Import.StrongMatchThreshold != defaultStrongMatchThreshold {
		t.Errorf("threshold = %v, want default", cfg.Import.StrongMatchThreshold)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		fragment string
	}{
		{"threshold", func(c *Config) { c.Import.StrongMatchThreshold = 1.5 }, "strong_match_threshold"},
		{"duplicate action", func(c *Config) { c.Import.DuplicateAction = "explode" }, "duplicate_action"},
		{"negative weight", func(c *Config) { c.Scoring.TitleWeight = -1 }, "title_weight"},
		{"zero weights", func(c *Config) {
			c.Scoring = Scoring{}
		}, "at least one field weight"},
		{"penalty", func(c *Config) { c.Scoring.UnmatchedPenalty = 2 }, "unmatched_penalty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.normalize(); err != nil {
				t.Fatalf("normalize: %v", err)
			}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.fragment) {
				t.Errorf("error %q does not mention %q", err, tt.fragment)
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected error on second WriteSample")
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LibraryDir string `toml:"library_dir"`
	StateDir   string `toml:"state_dir"`
	LogDir     string `toml:"log_dir"`
}

// Import contains configuration for the import pipeline.
type Import struct {
	// Threads is the worker count for parallel stages.
	Threads int `toml:"threads"`
	// QueueSize bounds the hand-off channels between stages.
	QueueSize int `toml:"queue_size"`
	// StrongMatchThreshold is the distance below which the best candidate
	// is accepted without consulting the decision callback.
	StrongMatchThreshold float64 `toml:"strong_match_threshold"`
	// DuplicateAction is the default duplicate resolution: "ask",
	// "replace", "skip", or "keep".
	DuplicateAction string `toml:"duplicate_action"`
	// Copy leaves source files in place and copies into the library;
	// when false files are moved.
	Copy bool `toml:"copy"`
	// Autotag enables metadata lookup and candidate matching. When
	// disabled tasks are applied with their observed tags.
	Autotag bool `toml:"autotag"`
	// Quiet suppresses interactive decision callbacks; thresholds and
	// configured defaults decide everything.
	Quiet bool `toml:"quiet"`
	// Singletons disables album grouping: every track imports alone.
	Singletons bool `toml:"singletons"`
	// LookupRetries bounds retries of transient metadata source failures.
	LookupRetries int `toml:"lookup_retries"`
	// LookupRateLimit caps metadata source calls per second. Zero
	// disables throttling.
	LookupRateLimit float64 `toml:"lookup_rate_limit"`
}

// Scoring contains the candidate distance weights.
type Scoring struct {
	TitleWeight       float64 `toml:"title_weight"`
	ArtistWeight      float64 `toml:"artist_weight"`
	AlbumWeight       float64 `toml:"album_weight"`
	TrackNumberWeight float64 `toml:"track_number_weight"`
	YearWeight        float64 `toml:"year_weight"`
	DurationWeight    float64 `toml:"duration_weight"`
	// UnmatchedPenalty is the distance contributed by each observed or
	// reference track left unmatched after alignment.
	UnmatchedPenalty float64 `toml:"unmatched_penalty"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root configuration document.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Import  Import  `toml:"import"`
	Scoring Scoring `toml:"scoring"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default
// configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tonearm/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("tonearm.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the importer writes to.
// LibraryDir is created on a best-effort basis so runs can start while
// external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Paths.LibraryDir != "" {
		_ = os.MkdirAll(c.Paths.LibraryDir, 0o755)
	}
	return nil
}

// WriteSample writes the embedded sample configuration to path,
// refusing to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

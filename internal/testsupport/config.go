package testsupport

import (
	"path/filepath"
	"testing"

	"tonearm/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per
// test. Quiet mode is on so nothing ever waits for a callback.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Import.Quiet = true
	cfg.Import.Threads = 2
	cfg.Import.QueueSize = 4

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithSingletons enables singleton import mode on the test config.
func WithSingletons() ConfigOption {
	return func(c *config.Config) { c.Import.Singletons = true }
}

// WithAutotag toggles autotagging on the test config.
func WithAutotag(enabled bool) ConfigOption {
	return func(c *config.Config) { c.Import.Autotag = enabled }
}

// WithDuplicateAction sets the default duplicate resolution.
func WithDuplicateAction(action string) ConfigOption {
	return func(c *config.Config) { c.Import.DuplicateAction = action }
}

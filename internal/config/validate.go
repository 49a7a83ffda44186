package config

import (
	"errors"
	"fmt"
)

var validDuplicateActions = map[string]struct{}{
	"ask":     {},
	"replace": {},
	"skip":    {},
	"keep":    {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateImport(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.LibraryDir == "" {
		return errors.New("paths.library_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateImport() error {
	if c.Import.StrongMatchThreshold < 0 || c.Import.StrongMatchThreshold > 1 {
		return errors.New("import.strong_match_threshold must be between 0 and 1")
	}
	if _, ok := validDuplicateActions[c.Import.DuplicateAction]; !ok {
		return fmt.Errorf("import.duplicate_action: unsupported value %q (use ask, replace, skip, or keep)", c.Import.DuplicateAction)
	}
	if c.Import.LookupRateLimit < 0 {
		return errors.New("import.lookup_rate_limit must not be negative")
	}
	return nil
}

func (c *Config) validateScoring() error {
	weights := []struct {
		name  string
		value float64
	}{
		{"title_weight", c.Scoring.TitleWeight},
		{"artist_weight", c.Scoring.ArtistWeight},
		{"album_weight", c.Scoring.AlbumWeight},
		{"track_number_weight", c.Scoring.TrackNumberWeight},
		{"year_weight", c.Scoring.YearWeight},
		{"duration_weight", c.Scoring.DurationWeight},
	}
	total := 0.0
	for _, w := range weights {
		if w.value < 0 {
			return fmt.Errorf("scoring.%s must not be negative", w.name)
		}
		total += w.value
	}
	if total == 0 {
		return errors.New("scoring: at least one field weight must be positive")
	}
	if c.Scoring.UnmatchedPenalty < 0 || c.Scoring.UnmatchedPenalty > 1 {
		return errors.New("scoring.unmatched_penalty must be between 0 and 1")
	}
	return nil
}

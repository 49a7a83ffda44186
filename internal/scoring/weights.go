package scoring

import "tonearm/internal/config"

// Weights controls how much each field contributes to a candidate's
// distance. Title and artist carry the most signal.
type Weights struct {
	Title       float64
	Artist      float64
	Album       float64
	TrackNumber float64
	Year        float64
	Duration    float64

	// UnmatchedPenalty is the distance each unaligned track contributes
	// when an album candidate's track list and the observed tracks
	// disagree in length or content.
	UnmatchedPenalty float64
}

// DefaultWeights returns the stock weighting.
func DefaultWeights() Weights {
	return Weights{
		Title:            3.0,
		Artist:           3.0,
		Album:            2.0,
		TrackNumber:      1.0,
		Year:             1.0,
		Duration:         1.0,
		UnmatchedPenalty: 0.6,
	}
}

// WeightsFromConfig maps the scoring config section onto Weights.
func WeightsFromConfig(cfg config.Scoring) Weights {
	return Weights{
		Title:            cfg.TitleWeight,
		Artist:           cfg.ArtistWeight,
		Album:            cfg.AlbumWeight,
		TrackNumber:      cfg.TrackNumberWeight,
		Year:             cfg.YearWeight,
		Duration:         cfg.DurationWeight,
		UnmatchedPenalty: cfg.UnmatchedPenalty,
	}
}

func (w Weights) trackFieldSum() float64 {
	return w.Title + w.TrackNumber + w.Duration
}

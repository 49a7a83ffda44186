package scoring

import (
	"math"
	"time"

	"tonearm/internal/media"
	"tonearm/internal/textutil"
)

const (
	// durationGrace is the slack before duration differences start to count.
	durationGrace = 10 * time.Second
	// durationRange normalizes duration differences beyond the grace window.
	durationRange = 30 * time.Second
	// yearRange normalizes release year differences.
	yearRange = 10.0
)

type component struct {
	distance float64
	weight   float64
}

func weightedSum(components []component) float64 {
	var total, weight float64
	for _, c := range components {
		if c.weight <= 0 {
			continue
		}
		total += clamp01(c.distance) * c.weight
		weight += c.weight
	}
	if weight == 0 {
		return 0
	}
	return clamp01(total / weight)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func numberDistance(a, b int) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a == b {
		return 0
	}
	return 1
}

func yearDistance(a, b int) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	return clamp01(math.Abs(float64(a-b)) / yearRange)
}

func durationDistance(a, b time.Duration) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	if diff <= durationGrace {
		return 0
	}
	return clamp01(float64(diff-durationGrace) / float64(durationRange))
}

// trackPairDistance scores one observed track against one reference
// track using title, track number, and duration.
func (e *Engine) trackPairDistance(obs media.Track, ref media.TrackRef) float64 {
	w := e.weights
	return weightedSum([]component{
		{textutil.Distance(obs.Title, ref.Title), w.Title},
		{numberDistance(obs.TrackNumber, ref.TrackNumber), w.TrackNumber},
		{durationDistance(obs.Duration, ref.Duration), w.Duration},
	})
}

// TrackDistance scores a singleton observation against a track candidate.
func (e *Engine) TrackDistance(obs media.Track, cand *media.TrackCandidate) float64 {
	w := e.weights
	ref := cand.Track
	return weightedSum([]component{
		{textutil.Distance(obs.Title, ref.Title), w.Title},
		{textutil.Distance(obs.Artist, ref.Artist), w.Artist},
		{numberDistance(obs.TrackNumber, ref.TrackNumber), w.TrackNumber},
		{durationDistance(obs.Duration, ref.Duration), w.Duration},
	})
}

// AlbumDistance scores a group of observed tracks against an album
// candidate. Observed tracks are aligned against the candidate's ordered
// reference list first; unmatched leftovers on either side contribute the
// configured penalty distance, so length mismatches degrade the score
// proportionally instead of failing.
func (e *Engine) AlbumDistance(obs []media.Track, cand *media.AlbumCandidate) (float64, Alignment) {
	w := e.weights
	alignment := e.align(obs, cand.Tracks)

	var trackSum float64
	for _, pair := range alignment.Pairs {
		trackSum += pair.Distance
	}
	unmatched := len(alignment.UnmatchedObserved) + len(alignment.UnmatchedReferences)
	trackSum += float64(unmatched) * clamp01(w.UnmatchedPenalty)

	trackAggregate := 0.0
	if slots := len(alignment.Pairs) + unmatched; slots > 0 {
		trackAggregate = trackSum / float64(slots)
	}

	obsAlbum, obsArtist, obsYear := albumObservation(obs)
	total := weightedSum([]component{
		{textutil.Distance(obsAlbum, cand.Album), w.Album},
		{textutil.Distance(obsArtist, cand.AlbumArtist), w.Artist},
		{yearDistance(obsYear, cand.Year), w.Year},
		{trackAggregate, w.trackFieldSum()},
	})
	return total, alignment
}

// albumObservation derives album-level fields from the grouped tracks:
// the first non-empty value wins, which is stable because track order is
// preserved end-to-end within a task.
func albumObservation(obs []media.Track) (album, artist string, year int) {
	for _, t := range obs {
		if album == "" {
			album = t.Album
		}
		if artist == "" {
			artist = t.EffectiveAlbumArtist()
		}
		if year == 0 {
			year = t.Year
		}
		if album != "" && artist != "" && year != 0 {
			break
		}
	}
	return album, artist, year
}

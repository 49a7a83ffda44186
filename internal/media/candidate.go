package media

import "time"

// TrackRef is one reference track inside an album candidate's ordered
// track list, or the payload of a standalone track candidate.
type TrackRef struct {
	Title       string
	Artist      string
	TrackNumber int
	DiscNumber  int
	Duration    time.Duration
	SourceID    string
}

// AlbumCandidate is a proposed album match returned by a metadata source.
// Tracks are ordered as released; the scoring engine aligns observed
// tracks against them.
type AlbumCandidate struct {
	Album       string
	AlbumArtist string
	Year        int
	Label       string
	Country     string
	MediaCount  int
	Source      string
	SourceID    string
	Tracks      []TrackRef
}

// TrackCandidate is a proposed match for a singleton track.
type TrackCandidate struct {
	Source   string
	SourceID string
	Track    TrackRef
}

// Candidate wraps either an album or a track proposal together with the
// distance computed for it. Exactly one of Album and Track is set.
type Candidate struct {
	Album *AlbumCandidate
	Track *TrackCandidate

	// Distance is the normalized mismatch score in [0,1]; 0 is a
	// perfect match. Populated by the scoring engine.
	Distance float64
}

// SourceID returns the external identifier of whichever proposal the
// candidate wraps.
func (c Candidate) SourceID() string {
	switch {
	case c.Album != nil:
		return c.Album.SourceID
	case c.Track != nil:
		return c.Track.SourceID
	}
	return ""
}

// Describe returns a short human-readable label for prompts and logs.
func (c Candidate) Describe() string {
	switch {
	case c.Album != nil:
		return c.Album.AlbumArtist + " - " + c.Album.Album
	case c.Track != nil:
		return c.Track.Track.Artist + " - " + c.Track.Track.Title
	}
	return "(empty candidate)"
}

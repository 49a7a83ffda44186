package media

import "time"

// Track is a single observation derived from one audio file. It is
// immutable once read; the owning import task holds the only reference.
type Track struct {
	Path        string
	Format      string
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	TrackNumber int
	TrackTotal  int
	DiscNumber  int
	Year        int
	Duration    time.Duration

	// SourceID carries an external identifier embedded in the file tags
	// (e.g. a MusicBrainz recording ID). Empty when absent.
	SourceID string
}

// EffectiveAlbumArtist returns the album artist, falling back to the
// track artist when the album artist tag is missing.
func (t Track) EffectiveAlbumArtist() string {
	if t.AlbumArtist != "" {
		return t.AlbumArtist
	}
	return t.Artist
}

// HasAlbum reports whether the observation carries enough album context
// to participate in album grouping.
func (t Track) HasAlbum() bool {
	return t.Album != ""
}

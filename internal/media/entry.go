package media

// EntryKind distinguishes album and singleton catalog entries.
type EntryKind string

const (
	EntryAlbum     EntryKind = "album"
	EntrySingleton EntryKind = "singleton"
)

// Entry is a catalog record describing an imported album or singleton
// track after metadata has been applied.
type Entry struct {
	ID          int64
	Kind        EntryKind
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Year        int
	TrackCount  int
	Source      string
	SourceID    string
	Paths       []string
}

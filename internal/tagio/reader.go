package tagio

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"tonearm/internal/media"
	"tonearm/internal/services"
)

// AudioExtensions lists the file extensions the importer scans for.
var AudioExtensions = map[string]struct{}{
	".mp3":  {},
	".flac": {},
	".m4a":  {},
	".ogg":  {},
	".opus": {},
	".wav":  {},
	".aiff": {},
}

// IsAudioFile reports whether the path looks like a supported audio file.
func IsAudioFile(path string) bool {
	_, ok := AudioExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Reader reads one track observation from an audio file.
type Reader interface {
	Read(ctx context.Context, path string) (media.Track, error)
}

// FileReader reads tags from local files.
type FileReader struct{}

// NewFileReader constructs the default tag reader.
func NewFileReader() *FileReader { return &FileReader{} }

// Read opens the file and extracts a track observation. Failures are
// classified permanent: a corrupt file does not get better on retry.
func (r *FileReader) Read(ctx context.Context, path string) (media.Track, error) {
	if err := ctx.Err(); err != nil {
		return media.Track{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return media.Track{}, services.Wrap(services.ErrPermanent, "read", "open file", path, err)
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil {
		return media.Track{}, services.Wrap(services.ErrPermanent, "read", "parse tags", path, err)
	}

	trackNum, trackTotal := meta.Track()
	discNum, _ := meta.Disc()

	observation := media.Track{
		Path:        path,
		Format:      strings.ToLower(filepath.Ext(path)),
		Title:       strings.TrimSpace(meta.Title()),
		Artist:      strings.TrimSpace(meta.Artist()),
		Album:       strings.TrimSpace(meta.Album()),
		AlbumArtist: strings.TrimSpace(meta.AlbumArtist()),
		TrackNumber: trackNum,
		TrackTotal:  trackTotal,
		DiscNumber:  discNum,
		Year:        meta.Year(),
	}
	if observation.Title == "" {
		base := filepath.Base(path)
		observation.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if raw, ok := meta.Raw()["musicbrainz_trackid"]; ok {
		if id, ok := raw.(string); ok {
			observation.SourceID = strings.TrimSpace(id)
		}
	}
	return observation, nil
}

package musicdb

import (
	"context"

	"tonearm/internal/media"
)

// Source answers candidate lookups for an import task. An empty slice
// with a nil error means the source found nothing; errors are reserved
// for lookup failures and are classified through the services sentinels.
type Source interface {
	// LookupAlbum proposes album candidates for a group of observed
	// tracks believed to form one album.
	LookupAlbum(ctx context.Context, artist, album string, tracks []media.Track) ([]media.AlbumCandidate, error)

	// LookupTrack proposes candidates for a single standalone track.
	LookupTrack(ctx context.Context, track media.Track) ([]media.TrackCandidate, error)
}

// NullSource is a source without a backend; every lookup finds nothing.
// It stands in when no metadata service is configured, letting imports
// proceed with observed tags.
type NullSource struct{}

func (NullSource) LookupAlbum(context.Context, string, string, []media.Track) ([]media.AlbumCandidate, error) {
	return nil, nil
}

func (NullSource) LookupTrack(context.Context, media.Track) ([]media.TrackCandidate, error) {
	return nil, nil
}

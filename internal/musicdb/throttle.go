package musicdb

import (
	"context"

	"golang.org/x/time/rate"

	"tonearm/internal/media"
)

// ThrottledSource caps the lookup rate against the wrapped source so
// concurrent lookup workers share one request budget.
type ThrottledSource struct {
	inner   Source
	limiter *rate.Limiter
}

// NewThrottledSource wraps inner with a token bucket of perSecond
// requests. perSecond <= 0 disables throttling.
func NewThrottledSource(inner Source, perSecond float64) *ThrottledSource {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &ThrottledSource{
		inner:   inner,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (s *ThrottledSource) LookupAlbum(ctx context.Context, artist, album string, tracks []media.Track) ([]media.AlbumCandidate, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.LookupAlbum(ctx, artist, album, tracks)
}

func (s *ThrottledSource) LookupTrack(ctx context.Context, track media.Track) ([]media.TrackCandidate, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.LookupTrack(ctx, track)
}

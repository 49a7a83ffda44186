package musicdb

import (
	"context"
	"log/slog"
	"time"

	"tonearm/internal/logging"
	"tonearm/internal/media"
	"tonearm/internal/services"
)

// RetrySource retries lookups that fail with a transient classification.
// Permanent and validation failures surface immediately.
type RetrySource struct {
	inner    Source
	attempts int
	backoff  time.Duration
	logger   *slog.Logger
}

// NewRetrySource wraps inner with up to attempts tries per lookup.
func NewRetrySource(inner Source, attempts int, backoff time.Duration, logger *slog.Logger) *RetrySource {
	if attempts < 1 {
		attempts = 1
	}
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	return &RetrySource{
		inner:    inner,
		attempts: attempts,
		backoff:  backoff,
		logger:   logging.NewComponentLogger(logger, "musicdb"),
	}
}

func (s *RetrySource) LookupAlbum(ctx context.Context, artist, album string, tracks []media.Track) ([]media.AlbumCandidate, error) {
	var out []media.AlbumCandidate
	err := s.retry(ctx, "album lookup", func() error {
		var lookupErr error
		out, lookupErr = s.inner.LookupAlbum(ctx, artist, album, tracks)
		return lookupErr
	})
	return out, err
}

func (s *RetrySource) LookupTrack(ctx context.Context, track media.Track) ([]media.TrackCandidate, error) {
	var out []media.TrackCandidate
	err := s.retry(ctx, "track lookup", func() error {
		var lookupErr error
		out, lookupErr = s.inner.LookupTrack(ctx, track)
		return lookupErr
	})
	return out, err
}

func (s *RetrySource) retry(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil || !services.IsTransient(lastErr) {
			return lastErr
		}
		if attempt == s.attempts {
			break
		}
		s.logger.Warn("transient lookup failure; retrying",
			logging.String("operation", operation),
			logging.Int("attempt", attempt),
			logging.Error(lastErr),
		)
		select {
		case <-time.After(s.backoff * time.Duration(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

package importer

import (
	"context"
	"errors"
	"path/filepath"

	"tonearm/internal/dedupe"
	"tonearm/internal/logging"
	"tonearm/internal/media"
	"tonearm/internal/pipeline"
	"tonearm/internal/services"
	"tonearm/internal/tagio"
	"tonearm/internal/task"
)

// resolveStage serializes identity handling: it takes the per-identity
// lock, queries the catalog for duplicates, and applies the resolution
// policy. The lock stays held until the apply stage finishes the task.
func (s *Session) resolveStage(ctx context.Context, t *task.Task, emit pipeline.Emit) error {
	if t.Status.Terminal() {
		emit(t)
		return nil
	}

	key, err := dedupe.IdentityFor(t)
	if err != nil {
		t.MarkFailed(err)
		emit(t)
		return nil
	}
	if err := s.locks.Acquire(ctx, key); err != nil {
		// Cancelled while waiting; the task drains unprocessed.
		emit(t)
		return nil
	}
	s.lockKeys.Store(t.ID, key)

	action, err := s.resolver.Resolve(ctx, t)
	if err != nil {
		t.MarkFailed(err)
		s.releaseLock(t)
		emit(t)
		return nil
	}
	if action == dedupe.ActionSkip {
		s.releaseLock(t)
		emit(t)
		return nil
	}
	if err := t.Advance(task.StatusDuplicatesResolved); err != nil {
		s.releaseLock(t)
		return err
	}
	emit(t)
	return nil
}

// applyStage is the pipeline's final consumer. It writes tags, places
// files, commits catalog entries, and accumulates the run summary.
func (s *Session) applyStage(ctx context.Context, t *task.Task, _ pipeline.Emit) error {
	defer s.releaseLock(t)

	switch t.Status {
	case task.StatusFailed:
		s.recordFailed(ctx, t, services.Category(t.Err))
	case task.StatusSkipped:
		s.recordSkipped(ctx, t)
	case task.StatusDuplicatesResolved:
		if err := s.applyTask(ctx, t); err != nil {
			t.MarkFailed(err)
			s.recordFailed(ctx, t, services.Category(err))
			return nil
		}
		if err := t.Advance(task.StatusApplied); err != nil {
			return err
		}
		logging.WithContext(ctx, s.logger).Info("imported", logging.String("what", t.Describe()))
		s.recordApplied(ctx, t)
	default:
		t.MarkFailed(services.Wrap(services.ErrValidation, "apply", "consume task",
			"unexpected state "+string(t.Status), nil))
		s.recordFailed(ctx, t, services.Category(t.Err))
	}
	return nil
}

func (s *Session) releaseLock(t *task.Task) {
	if key, ok := s.lockKeys.LoadAndDelete(t.ID); ok {
		s.locks.Release(key.(string))
	}
}

func (s *Session) applyTask(ctx context.Context, t *task.Task) error {
	choice, ok := t.Choice()
	if !ok {
		return services.Wrap(services.ErrValidation, "apply", "read choice", "no choice set", nil)
	}

	var entry media.Entry
	switch {
	case t.Kind == task.KindAlbum && choice.Kind == task.ChoiceApply:
		cand := t.ChosenCandidate().Album
		placed, err := s.applyAlbumCandidate(ctx, t, cand)
		if err != nil {
			return err
		}
		entry = media.Entry{
			Kind:        media.EntryAlbum,
			Album:       cand.Album,
			AlbumArtist: cand.AlbumArtist,
			Year:        cand.Year,
			TrackCount:  len(placed),
			Source:      cand.Source,
			SourceID:    cand.SourceID,
			Paths:       placed,
		}
	case t.Kind == task.KindAlbum:
		first := t.Tracks[0]
		placed, err := s.applyAlbumAsIs(ctx, t)
		if err != nil {
			return err
		}
		entry = media.Entry{
			Kind:        media.EntryAlbum,
			Album:       first.Album,
			AlbumArtist: first.EffectiveAlbumArtist(),
			Year:        first.Year,
			TrackCount:  len(placed),
			SourceID:    first.SourceID,
			Paths:       placed,
		}
	case choice.Kind == task.ChoiceApply:
		cand := t.ChosenCandidate().Track
		obs := t.Tracks[0]
		update := tagio.UpdateFor(cand.Track, nil)
		update.SourceID = cand.SourceID
		if err := s.writeTags(ctx, t, obs.Path, update); err != nil {
			return err
		}
		dest := s.organizer.SingletonDestination(cand.Track.Artist, cand.Track.Title, filepath.Ext(obs.Path))
		placed, err := s.organizer.Place(ctx, obs.Path, dest)
		if err != nil {
			return err
		}
		s.rememberSource(ctx, obs.Path, placed, cand.SourceID)
		entry = media.Entry{
			Kind:       media.EntrySingleton,
			Title:      cand.Track.Title,
			Artist:     cand.Track.Artist,
			TrackCount: 1,
			Source:     cand.Source,
			SourceID:   cand.SourceID,
			Paths:      []string{placed},
		}
	default:
		obs := t.Tracks[0]
		dest := s.organizer.SingletonDestination(obs.Artist, obs.Title, filepath.Ext(obs.Path))
		placed, err := s.organizer.Place(ctx, obs.Path, dest)
		if err != nil {
			return err
		}
		entry = media.Entry{
			Kind:       media.EntrySingleton,
			Title:      obs.Title,
			Artist:     obs.Artist,
			Year:       obs.Year,
			TrackCount: 1,
			SourceID:   obs.SourceID,
			Paths:      []string{placed},
		}
	}

	if err := s.store.Upsert(ctx, &entry); err != nil {
		return services.Wrap(services.ErrTransient, "apply", "commit catalog entry", entry.Album+entry.Title, err)
	}
	return nil
}

// applyAlbumCandidate stamps the chosen metadata onto every aligned
// track and places all surviving files. Unaligned observed tracks keep
// their tags but still move into the album directory. Any failure after
// a track's tags were written fails the whole task; siblings placed
// before the failure stay where they landed.
func (s *Session) applyAlbumCandidate(ctx context.Context, t *task.Task, cand *media.AlbumCandidate) ([]string, error) {
	_, alignment := s.engine.AlbumDistance(t.Tracks, cand)
	matched := make(map[int]media.TrackRef, len(alignment.Pairs))
	for _, pair := range alignment.Pairs {
		ref := cand.Tracks[pair.ReferenceIndex]
		if ref.TrackNumber == 0 {
			ref.TrackNumber = pair.ReferenceIndex + 1
		}
		matched[pair.ObservedIndex] = ref
	}

	var placed []string
	for i, obs := range t.Tracks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		title, trackNumber := obs.Title, obs.TrackNumber
		tagged := false
		if ref, ok := matched[i]; ok {
			update := tagio.UpdateFor(ref, cand)
			if err := s.writeTags(ctx, t, obs.Path, update); err != nil {
				return nil, err
			}
			title, trackNumber = ref.Title, ref.TrackNumber
			tagged = true
		}
		dest := s.organizer.AlbumDestination(cand.AlbumArtist, cand.Album, title, filepath.Ext(obs.Path), trackNumber)
		dst, err := s.organizer.Place(ctx, obs.Path, dest)
		if err != nil {
			t.FileFailures = append(t.FileFailures, task.FileFailure{
				Path: obs.Path, Err: err, Category: services.Category(err),
			})
			if tagged {
				// The file already carries the new tags; degrading this
				// to a note would hide a retagged stray outside the
				// library.
				return nil, err
			}
			continue
		}
		placed = append(placed, dst)
		s.rememberSource(ctx, obs.Path, dst, cand.SourceID)
	}
	if len(placed) == 0 {
		return nil, services.Wrap(services.ErrPermanent, "apply", "place album", "no files placed", nil)
	}
	return placed, nil
}

func (s *Session) applyAlbumAsIs(ctx context.Context, t *task.Task) ([]string, error) {
	first := t.Tracks[0]
	var placed []string
	for _, obs := range t.Tracks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dest := s.organizer.AlbumDestination(first.EffectiveAlbumArtist(), first.Album, obs.Title, filepath.Ext(obs.Path), obs.TrackNumber)
		dst, err := s.organizer.Place(ctx, obs.Path, dest)
		if err != nil {
			t.FileFailures = append(t.FileFailures, task.FileFailure{
				Path: obs.Path, Err: err, Category: services.Category(err),
			})
			continue
		}
		placed = append(placed, dst)
	}
	if len(placed) == 0 {
		return nil, services.Wrap(services.ErrPermanent, "apply", "place album", "no files placed", nil)
	}
	return placed, nil
}

// writeTags applies the update, tolerating unsupported containers by
// keeping the observed tags. Real write failures are recorded as
// per-file failures.
func (s *Session) writeTags(ctx context.Context, t *task.Task, path string, update tagio.Update) error {
	err := s.writer.Write(ctx, path, update)
	if err == nil {
		return nil
	}
	if errors.Is(err, services.ErrValidation) {
		logging.WithContext(ctx, s.logger).Warn("container not writable; keeping observed tags",
			logging.String("path", path),
			logging.Error(err),
		)
		return nil
	}
	t.FileFailures = append(t.FileFailures, task.FileFailure{
		Path: path, Err: err, Category: services.Category(err),
	})
	return err
}

func (s *Session) rememberSource(ctx context.Context, srcPath, placedPath, sourceID string) {
	if sourceID == "" {
		return
	}
	if err := s.store.RememberSource(ctx, placedPath, sourceID); err != nil {
		s.logger.Warn("source memory write failed", logging.Error(err))
		return
	}
	if s.cfg.Import.Copy && srcPath != placedPath {
		_ = s.store.RememberSource(ctx, srcPath, sourceID)
	}
}

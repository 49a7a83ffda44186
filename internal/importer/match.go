package importer

import (
	"context"
	"errors"

	"tonearm/internal/logging"
	"tonearm/internal/media"
	"tonearm/internal/pipeline"
	"tonearm/internal/task"
)

// ErrAborted is returned from Run when a decision callback aborts the
// import.
var ErrAborted = errors.New("import aborted")

// lookupStage fetches and ranks metadata candidates. Lookup failures
// fail the one task, never the run.
func (s *Session) lookupStage(ctx context.Context, t *task.Task, emit pipeline.Emit) error {
	if t.Status.Terminal() {
		emit(t)
		return nil
	}
	if !s.cfg.Import.Autotag {
		if err := t.Advance(task.StatusCandidatesFetched); err != nil {
			return err
		}
		emit(t)
		return nil
	}

	logger := logging.WithContext(ctx, s.logger)
	priorID, err := s.store.PriorSourceID(ctx, t.Paths)
	if err != nil {
		logger.Warn("prior source lookup failed", logging.Error(err))
		priorID = ""
	}

	switch t.Kind {
	case task.KindAlbum:
		first := t.Tracks[0]
		cands, err := s.source.LookupAlbum(ctx, first.EffectiveAlbumArtist(), first.Album, t.Tracks)
		if err != nil {
			t.MarkFailed(err)
			emit(t)
			return nil
		}
		refs := make([]*media.AlbumCandidate, len(cands))
		for i := range cands {
			refs[i] = &cands[i]
		}
		t.Candidates = s.engine.RankAlbums(t.Tracks, refs, priorID)
	default:
		cands, err := s.source.LookupTrack(ctx, t.Tracks[0])
		if err != nil {
			t.MarkFailed(err)
			emit(t)
			return nil
		}
		refs := make([]*media.TrackCandidate, len(cands))
		for i := range cands {
			refs[i] = &cands[i]
		}
		t.Candidates = s.engine.RankTracks(t.Tracks[0], refs, priorID)
	}

	if err := t.Advance(task.StatusCandidatesFetched); err != nil {
		return err
	}
	emit(t)
	return nil
}

// chooseStage finalizes the decision for each task. Single worker so
// interactive callbacks never interleave.
func (s *Session) chooseStage(ctx context.Context, t *task.Task, emit pipeline.Emit) error {
	if t.Status.Terminal() {
		emit(t)
		return nil
	}

	choice := s.decide(ctx, t)
	if choice.Kind == task.ChoiceAbort {
		return ErrAborted
	}
	if err := t.SetChoice(choice); err != nil {
		return err
	}
	if err := t.Advance(task.StatusChoiceMade); err != nil {
		return err
	}
	if choice.Kind == task.ChoiceSkip {
		if err := t.MarkSkipped(); err != nil {
			return err
		}
	}
	emit(t)
	return nil
}

// decide picks a choice without user input where possible: a candidate
// under the acceptance threshold wins outright, autotag-off keeps the
// observed tags, and quiet runs fall back to skipping.
func (s *Session) decide(ctx context.Context, t *task.Task) task.Choice {
	if !s.cfg.Import.Autotag {
		return task.AsIs()
	}
	if len(t.Candidates) == 0 {
		// Nothing to compare against; import with observed tags.
		return task.AsIs()
	}
	if t.Candidates[0].Distance <= s.cfg.Import.StrongMatchThreshold {
		logging.WithContext(ctx, s.logger).Debug("strong match accepted",
			logging.String("candidate", t.Candidates[0].Describe()),
			logging.Float64("distance", t.Candidates[0].Distance),
		)
		return task.Apply(0)
	}
	if s.cfg.Import.Quiet || s.decisions.Choose == nil {
		return task.Skip()
	}
	return s.decisions.Choose(ctx, t)
}

package importer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"tonearm/internal/logging"
	"tonearm/internal/media"
	"tonearm/internal/pipeline"
	"tonearm/internal/services"
	"tonearm/internal/tagio"
	"tonearm/internal/task"
	"tonearm/internal/textutil"
)

// scan enumerates the import paths into tasks. Each directory holding
// audio files becomes one album task; loose files and singleton mode
// produce one task per file.
func (s *Session) scan(ctx context.Context, emit pipeline.Emit) error {
	for _, root := range s.paths {
		if ctx.Err() != nil {
			return nil
		}
		info, err := os.Stat(root)
		if err != nil {
			return services.Wrap(services.ErrValidation, "scan", "stat import path", root, err)
		}
		if !info.IsDir() {
			if tagio.IsAudioFile(root) {
				emit(task.New(task.KindSingleton, []string{root}))
			}
			continue
		}

		byDir := make(map[string][]string)
		var dirOrder []string
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return filepath.SkipAll
			}
			if d.IsDir() || !tagio.IsAudioFile(path) {
				return nil
			}
			dir := filepath.Dir(path)
			if _, seen := byDir[dir]; !seen {
				dirOrder = append(dirOrder, dir)
			}
			byDir[dir] = append(byDir[dir], path)
			return nil
		})
		if walkErr != nil {
			return services.Wrap(services.ErrValidation, "scan", "walk import path", root, walkErr)
		}

		for _, dir := range dirOrder {
			files := byDir[dir]
			sort.Strings(files)
			if s.cfg.Import.Singletons {
				for _, file := range files {
					emit(task.New(task.KindSingleton, []string{file}))
				}
				continue
			}
			emit(task.New(task.KindAlbum, files))
		}
	}
	return nil
}

// readStage reads tags from every file in the task. A per-file read
// failure drops that track and keeps its siblings; the task only fails
// when nothing survives.
func (s *Session) readStage(ctx context.Context, t *task.Task, emit pipeline.Emit) error {
	for _, path := range t.Paths {
		if ctx.Err() != nil {
			return nil
		}
		track, err := s.reader.Read(ctx, path)
		if err != nil {
			logging.WithContext(ctx, s.logger).Warn("unreadable file dropped",
				logging.String("path", path),
				logging.Error(err),
			)
			t.DropTrack(path, err, services.Category(err))
			continue
		}
		t.Tracks = append(t.Tracks, track)
	}

	if len(t.Tracks) == 0 {
		t.MarkFailed(services.Wrap(services.ErrPermanent, "read", "read files", "no readable tracks", nil))
		emit(t)
		return nil
	}
	if err := t.Advance(task.StatusRead); err != nil {
		return err
	}
	emit(t)
	return nil
}

// groupStage splits a directory-derived album task by normalized
// album+albumartist. Tracks without an album tag degrade into
// singleton tasks. Runs single-worker so fan-out order is stable.
func (s *Session) groupStage(ctx context.Context, t *task.Task, emit pipeline.Emit) error {
	if t.Status.Terminal() {
		emit(t)
		return nil
	}
	if t.Kind == task.KindSingleton {
		if err := t.Advance(task.StatusGrouped); err != nil {
			return err
		}
		emit(t)
		return nil
	}

	byKey := make(map[string][]media.Track)
	var keyOrder []string
	var loose []media.Track
	for _, track := range t.Tracks {
		if !track.HasAlbum() {
			loose = append(loose, track)
			continue
		}
		key := textutil.IdentityToken(track.EffectiveAlbumArtist()) + "/" + textutil.IdentityToken(track.Album)
		if _, seen := byKey[key]; !seen {
			keyOrder = append(keyOrder, key)
		}
		byKey[key] = append(byKey[key], track)
	}

	if len(keyOrder) == 1 && len(loose) == 0 {
		if err := t.Advance(task.StatusGrouped); err != nil {
			return err
		}
		emit(t)
		return nil
	}

	// The directory held several albums or untagged strays; fan out.
	// File failures stay with the first subtask so the summary still
	// reports them once.
	failures := t.FileFailures
	for _, key := range keyOrder {
		tracks := byKey[key]
		sub := task.New(task.KindAlbum, trackPaths(tracks))
		sub.Tracks = tracks
		sub.FileFailures = failures
		failures = nil
		if err := advanceTo(sub, task.StatusGrouped); err != nil {
			return err
		}
		emit(sub)
	}
	for _, track := range loose {
		sub := task.New(task.KindSingleton, []string{track.Path})
		sub.Tracks = []media.Track{track}
		sub.FileFailures = failures
		failures = nil
		if err := advanceTo(sub, task.StatusGrouped); err != nil {
			return err
		}
		emit(sub)
	}
	return nil
}

func trackPaths(tracks []media.Track) []string {
	paths := make([]string, len(tracks))
	for i, track := range tracks {
		paths[i] = track.Path
	}
	return paths
}

func advanceTo(t *task.Task, to task.Status) error {
	for t.Status != to {
		next, ok := task.NextStatus(t.Status)
		if !ok {
			return t.Advance(to)
		}
		if err := t.Advance(next); err != nil {
			return err
		}
	}
	return nil
}

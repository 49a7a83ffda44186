package task

import (
	"fmt"

	"github.com/google/uuid"

	"tonearm/internal/media"
)

// Kind distinguishes album tasks from singleton track tasks.
type Kind string

const (
	KindAlbum     Kind = "album"
	KindSingleton Kind = "singleton"
)

// FileFailure records a per-file read error that removed one track from
// the task without failing its siblings.
type FileFailure struct {
	Path     string
	Err      error
	Category string
}

// Task is one importable unit of work. It is owned by exactly one
// pipeline run and is never shared across runs; stage workers hand it
// off through channels, so no internal locking is needed.
type Task struct {
	ID     string
	Kind   Kind
	Status Status

	// Paths are the source files assigned to this task before reading.
	Paths []string
	// Tracks are the observations that survived reading, in input order.
	Tracks []media.Track
	// Candidates is the ranked proposal list, best first.
	Candidates []media.Candidate
	// Duplicates holds colliding catalog entries found after the choice.
	Duplicates []media.Entry
	// FileFailures records tracks dropped by per-file read errors.
	FileFailures []FileFailure

	choice    Choice
	choiceSet bool

	// Err is the per-task error that moved the task to StatusFailed.
	Err error
}

// New creates a task in the created state covering the given files.
func New(kind Kind, paths []string) *Task {
	return &Task{
		ID:     uuid.NewString(),
		Kind:   kind,
		Status: StatusCreated,
		Paths:  paths,
	}
}

// Advance moves the task to the next working state, validating that the
// transition is legal. Transitions are linear; there is no way back.
func (t *Task) Advance(to Status) error {
	if t.Status.Terminal() {
		return fmt.Errorf("task %s: cannot leave terminal state %s", t.ID, t.Status)
	}
	if next, ok := forwardTransitions[t.Status]; !ok || next != to {
		return fmt.Errorf("task %s: illegal transition %s -> %s", t.ID, t.Status, to)
	}
	t.Status = to
	return nil
}

// MarkSkipped moves the task to the skipped terminal state. Only legal
// once candidates have been fetched.
func (t *Task) MarkSkipped() error {
	if _, ok := skippableFrom[t.Status]; !ok {
		return fmt.Errorf("task %s: cannot skip from state %s", t.ID, t.Status)
	}
	t.Status = StatusSkipped
	return nil
}

// MarkFailed moves the task to the failed terminal state with the
// causing error. Legal from any non-terminal state.
func (t *Task) MarkFailed(err error) {
	if t.Status.Terminal() {
		return
	}
	t.Status = StatusFailed
	t.Err = err
}

// SetChoice finalizes the decision for this task. A choice can be set
// exactly once; a second attempt is an error, not a silent overwrite.
func (t *Task) SetChoice(c Choice) error {
	if t.choiceSet {
		return fmt.Errorf("task %s: choice already set to %s", t.ID, t.choice.Kind)
	}
	if err := c.validate(len(t.Candidates)); err != nil {
		return fmt.Errorf("task %s: %w", t.ID, err)
	}
	t.choice = c
	t.choiceSet = true
	return nil
}

// Choice returns the finalized decision and whether one has been set.
func (t *Task) Choice() (Choice, bool) {
	return t.choice, t.choiceSet
}

// ChosenCandidate returns the candidate selected by an apply choice, or
// nil for every other choice kind.
func (t *Task) ChosenCandidate() *media.Candidate {
	if !t.choiceSet || t.choice.Kind != ChoiceApply {
		return nil
	}
	return &t.Candidates[t.choice.Index]
}

// DropTrack records a per-file failure and removes the track at the
// given path from the task. Returns the number of surviving tracks.
func (t *Task) DropTrack(path string, err error, category string) int {
	t.FileFailures = append(t.FileFailures, FileFailure{Path: path, Err: err, Category: category})
	kept := t.Tracks[:0]
	for _, track := range t.Tracks {
		if track.Path != path {
			kept = append(kept, track)
		}
	}
	t.Tracks = kept
	return len(t.Tracks)
}

// Describe returns a short label for logs and summaries.
func (t *Task) Describe() string {
	if len(t.Tracks) > 0 {
		first := t.Tracks[0]
		if t.Kind == KindAlbum {
			return fmt.Sprintf("%s - %s (%d tracks)", first.EffectiveAlbumArtist(), first.Album, len(t.Tracks))
		}
		return fmt.Sprintf("%s - %s", first.Artist, first.Title)
	}
	if len(t.Paths) > 0 {
		return t.Paths[0]
	}
	return t.ID
}

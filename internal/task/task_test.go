package task

import (
	"errors"
	"testing"

	"tonearm/internal/media"
)

func TestAdvanceFollowsLinearOrder(t *testing.T) {
	tk := New(KindAlbum, []string{"/music/a.flac"})
	order := []Status{
		StatusRead,
		StatusGrouped,
		StatusCandidatesFetched,
		StatusChoiceMade,
		StatusDuplicatesResolved,
		StatusApplied,
	}
	for _, next := range order {
		if err := tk.Advance(next); err != nil {
			t.Fatalf("Advance(%s): %v", next, err)
		}
	}
	if !tk.Status.Terminal() {
		t.Error("applied should be terminal")
	}
}

func TestAdvanceRejectsSkippingStates(t *testing.T) {
	tk := New(KindSingleton, nil)
	if err := tk.Advance(StatusChoiceMade); err == nil {
		t.Fatal("expected error jumping created -> choice_made")
	}
	if err := tk.Advance(StatusRead); err != nil {
		t.Fatalf("Advance(read): %v", err)
	}
	if err := tk.Advance(StatusRead); err == nil {
		t.Fatal("expected error repeating a state")
	}
}

func TestMarkFailedFromAnyState(t *testing.T) {
	tk := New(KindAlbum, nil)
	cause := errors.New("unreadable")
	tk.MarkFailed(cause)
	if tk.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", tk.Status)
	}
	if !errors.Is(tk.Err, cause) {
		t.Error("expected cause to be recorded")
	}
	// Terminal states stay put.
	tk.MarkFailed(errors.New("second"))
	if !errors.Is(tk.Err, cause) {
		t.Error("failed task must keep its original error")
	}
	if err := tk.Advance(StatusRead); err == nil {
		t.Error("expected error advancing a failed task")
	}
}

func TestMarkSkippedOnlyAfterCandidates(t *testing.T) {
	tk := New(KindAlbum, nil)
	if err := tk.MarkSkipped(); err == nil {
		t.Fatal("expected error skipping from created")
	}
	mustAdvance(t, tk, StatusRead, StatusGrouped, StatusCandidatesFetched)
	if err := tk.MarkSkipped(); err != nil {
		t.Fatalf("MarkSkipped: %v", err)
	}
	if tk.Status != StatusSkipped {
		t.Errorf("status = %s, want skipped", tk.Status)
	}
}

func TestSetChoiceExactlyOnce(t *testing.T) {
	tk := New(KindAlbum, nil)
	tk.Candidates = []media.Candidate{{Album: &media.AlbumCandidate{Album: "X"}}}

	if err := tk.SetChoice(Apply(0)); err != nil {
		t.Fatalf("SetChoice: %v", err)
	}
	if err := tk.SetChoice(AsIs()); err == nil {
		t.Fatal("expected error on second SetChoice")
	}
	choice, ok := tk.Choice()
	if !ok || choice.Kind != ChoiceApply {
		t.Errorf("choice = %v/%v, want apply", choice, ok)
	}
	if tk.ChosenCandidate() == nil {
		t.Error("expected chosen candidate")
	}
}

func TestSetChoiceValidatesIndex(t *testing.T) {
	tk := New(KindSingleton, nil)
	if err := tk.SetChoice(Apply(0)); err == nil {
		t.Fatal("expected bounds error with no candidates")
	}
	if err := tk.SetChoice(AsIs()); err != nil {
		t.Fatalf("AsIs after failed apply should work: %v", err)
	}
}

func TestDropTrackKeepsSiblings(t *testing.T) {
	tk := New(KindAlbum, []string{"/a", "/b", "/c"})
	tk.Tracks = []media.Track{{Path: "/a"}, {Path: "/b"}, {Path: "/c"}}

	remaining := tk.DropTrack("/b", errors.New("corrupt header"), "read")
	if remaining != 2 {
		t.Fatalf("remaining = %d, want 2", remaining)
	}
	if len(tk.FileFailures) != 1 || tk.FileFailures[0].Path != "/b" {
		t.Errorf("file failure not recorded: %+v", tk.FileFailures)
	}
	for _, track := range tk.Tracks {
		if track.Path == "/b" {
			t.Error("dropped track still present")
		}
	}
}

func mustAdvance(t *testing.T, tk *Task, states ...Status) {
	t.Helper()
	for _, s := range states {
		if err := tk.Advance(s); err != nil {
			t.Fatalf("Advance(%s): %v", s, err)
		}
	}
}

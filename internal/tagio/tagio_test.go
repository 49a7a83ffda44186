package tagio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-flac/flacvorbis"

	"tonearm/internal/media"
	"tonearm/internal/services"
)

func TestIsAudioFile(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/music/a.mp3", true},
		{"/music/b.FLAC", true},
		{"/music/c.m4a", true},
		{"/music/cover.jpg", false},
		{"/music/notes.txt", false},
		{"/music/noext", false},
	}
	for _, tc := range cases {
		if got := IsAudioFile(tc.path); got != tc.want {
			t.Errorf("IsAudioFile(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestReadMissingFileIsPermanent(t *testing.T) {
	r := NewFileReader()
	_, err := r.Read(context.Background(), filepath.Join(t.TempDir(), "absent.mp3"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, services.ErrPermanent) {
		t.Errorf("error = %v, want permanent classification", err)
	}
}

func TestReadRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewFileReader()
	if _, err := r.Read(ctx, "/nowhere.mp3"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestWriteUnsupportedContainer(t *testing.T) {
	w := NewFileWriter()
	err := w.Write(context.Background(), "/music/a.ogg", Update{Title: "x"})
	if !errors.Is(err, services.ErrValidation) {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestWriteFLACRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.flac")
	if err := os.WriteFile(path, []byte("not a flac stream"), 0o644); err != nil {
		t.Fatal(err)
	}
	w := NewFileWriter()
	err := w.Write(context.Background(), path, Update{Title: "x"})
	if !errors.Is(err, services.ErrPermanent) {
		t.Errorf("error = %v, want permanent classification", err)
	}
}

func TestFLACUpdateKeepsUnrelatedFields(t *testing.T) {
	existing := flacvorbis.New()
	existing.Add(flacvorbis.FIELD_TITLE, "Old Title")
	existing.Add(flacvorbis.FIELD_GENRE, "Shoegaze")
	existing.Add("COMMENT", "ripped from vinyl")

	comment := flacvorbis.New()
	comment.Add(flacvorbis.FIELD_TITLE, "Only Shallow")
	mergeVorbisComments(comment, existing)

	title, _ := comment.Get(flacvorbis.FIELD_TITLE)
	if len(title) != 1 || title[0] != "Only Shallow" {
		t.Errorf("title = %v, want only the updated value", title)
	}
	genre, _ := comment.Get(flacvorbis.FIELD_GENRE)
	if len(genre) != 1 || genre[0] != "Shoegaze" {
		t.Errorf("genre = %v, want the pre-existing value kept", genre)
	}
	note, _ := comment.Get("COMMENT")
	if len(note) != 1 || note[0] != "ripped from vinyl" {
		t.Errorf("comment = %v, want the pre-existing value kept", note)
	}

	untouched := flacvorbis.New()
	mergeVorbisComments(untouched, nil)
	if len(untouched.Comments) != 0 {
		t.Errorf("merge without a source added fields: %v", untouched.Comments)
	}
}

func TestMP3RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.mp3")
	// A tagless stand-in for audio data; the writer prepends the tag.
	if err := os.WriteFile(path, make([]byte, 256), 0o644); err != nil {
		t.Fatal(err)
	}

	update := Update{
		Title:       "Only Shallow",
		Artist:      "My Bloody Valentine",
		Album:       "Loveless",
		AlbumArtist: "My Bloody Valentine",
		TrackNumber: 1,
		TrackTotal:  11,
		DiscNumber:  1,
	}
	w := NewFileWriter()
	if err := w.Write(context.Background(), path, update); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := NewFileReader().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Title != update.Title || got.Artist != update.Artist || got.Album != update.Album {
		t.Errorf("round trip got %q/%q/%q", got.Title, got.Artist, got.Album)
	}
	if got.AlbumArtist != update.AlbumArtist {
		t.Errorf("album artist = %q, want %q", got.AlbumArtist, update.AlbumArtist)
	}
	if got.TrackNumber != 1 || got.TrackTotal != 11 {
		t.Errorf("track = %d/%d, want 1/11", got.TrackNumber, got.TrackTotal)
	}
}

func TestUpdateFor(t *testing.T) {
	album := &media.AlbumCandidate{
		Album:       "Loveless",
		AlbumArtist: "My Bloody Valentine",
		Year:        1991,
		Tracks:      make([]media.TrackRef, 11),
	}
	ref := media.TrackRef{Title: "Soon", TrackNumber: 11, SourceID: "mb-123"}

	u := UpdateFor(ref, album)
	if u.Album != "Loveless" || u.AlbumArtist != "My Bloody Valentine" || u.Year != 1991 {
		t.Errorf("album fields not carried: %+v", u)
	}
	if u.Artist != "My Bloody Valentine" {
		t.Errorf("artist fallback = %q, want album artist", u.Artist)
	}
	if u.TrackTotal != 11 || u.TrackNumber != 11 || u.SourceID != "mb-123" {
		t.Errorf("track fields not carried: %+v", u)
	}

	solo := UpdateFor(media.TrackRef{Title: "Single", Artist: "Someone"}, nil)
	if solo.Album != "" || solo.Artist != "Someone" {
		t.Errorf("singleton update = %+v", solo)
	}
}

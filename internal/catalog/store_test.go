package catalog_test

import (
	"context"
	"testing"
	"time"

	"tonearm/internal/catalog"
	"tonearm/internal/media"
	"tonearm/internal/testsupport"
)

func newTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	return testsupport.MustOpenStore(t, testsupport.NewConfig(t))
}

func TestUpsertAndFindByIdentity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := media.Entry{
		Kind:        media.EntryAlbum,
		Album:       "Loveless",
		AlbumArtist: "My Bloody Valentine",
		Year:        1991,
		TrackCount:  11,
		Source:      "musicbrainz",
		SourceID:    "mb-1",
		Paths:       []string{"/lib/My Bloody Valentine/Loveless/01 Only Shallow.flac"},
	}
	if err := store.Upsert(ctx, &entry); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if entry.ID == 0 {
		t.Fatal("Upsert did not assign an id")
	}

	found, err := store.FindByIdentity(ctx, catalog.AlbumIdentity("My Bloody Valentine", "Loveless"))
	if err != nil {
		t.Fatalf("FindByIdentity: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("found %d entries, want 1", len(found))
	}
	got := found[0]
	if got.Album != entry.Album || got.Year != 1991 || got.TrackCount != 11 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.Paths) != 1 || got.Paths[0] != entry.Paths[0] {
		t.Errorf("paths not preserved: %v", got.Paths)
	}

	// Identity is case and punctuation insensitive.
	found, err = store.FindByIdentity(ctx, catalog.AlbumIdentity("my bloody valentine", "LOVELESS!"))
	if err != nil || len(found) != 1 {
		t.Errorf("normalized identity lookup found %d entries, err %v", len(found), err)
	}
}

func TestUpsertRewritesExistingEntry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := media.Entry{Kind: media.EntrySingleton, Title: "Soon", Artist: "MBV"}
	if err := store.Upsert(ctx, &entry); err != nil {
		t.Fatalf("insert: %v", err)
	}

	entry.Year = 1991
	if err := store.Upsert(ctx, &entry); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, ok, err := store.GetByID(ctx, entry.ID)
	if err != nil || !ok {
		t.Fatalf("GetByID: ok=%v err=%v", ok, err)
	}
	if got.Year != 1991 {
		t.Errorf("year = %d, want 1991", got.Year)
	}

	albums, singletons, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if albums != 0 || singletons != 1 {
		t.Errorf("counts = %d/%d, want 0 albums, 1 singleton", albums, singletons)
	}
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := media.Entry{Kind: media.EntryAlbum, Album: "X", AlbumArtist: "Y"}
	if err := store.Upsert(ctx, &entry); err != nil {
		t.Fatal(err)
	}
	if err := store.Remove(ctx, entry.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := store.GetByID(ctx, entry.ID); ok {
		t.Error("entry still present after Remove")
	}
	if err := store.Remove(ctx, 9999); err != nil {
		t.Errorf("removing missing id should be a no-op, got %v", err)
	}
}

func TestSourceMemory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.RememberSource(ctx, "/in/a.flac", "mb-1"); err != nil {
		t.Fatal(err)
	}
	if err := store.RememberSource(ctx, "/in/a.flac", "mb-2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	id, err := store.PriorSourceID(ctx, []string{"/in/unknown.flac", "/in/a.flac"})
	if err != nil {
		t.Fatalf("PriorSourceID: %v", err)
	}
	if id != "mb-2" {
		t.Errorf("prior source id = %q, want mb-2", id)
	}

	id, err = store.PriorSourceID(ctx, []string{"/in/never-seen.flac"})
	if err != nil || id != "" {
		t.Errorf("unknown paths = %q err %v, want empty", id, err)
	}
}

func TestIdentityKinds(t *testing.T) {
	album := catalog.AlbumIdentity("Artist", "Title")
	track := catalog.SingletonIdentity("Artist", "Title")
	if album == track {
		t.Error("album and singleton identities must not collide")
	}
	if catalog.EntryIdentity(media.Entry{Kind: media.EntrySingleton, Artist: "Artist", Title: "Title"}) != track {
		t.Error("EntryIdentity(singleton) mismatch")
	}
}

func TestKeyLocksCrossGoroutineRelease(t *testing.T) {
	locks := catalog.NewKeyLocks()
	ctx := context.Background()

	if err := locks.Acquire(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if locks.TryAcquire("k") {
		t.Fatal("second acquire should fail while held")
	}

	done := make(chan error, 1)
	go func() {
		done <- locks.Acquire(ctx, "k")
	}()

	// Released from a different goroutine than the acquirer.
	go locks.Release("k")

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Acquire after release: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire did not observe the release")
	}
	locks.Release("k")
}

func TestKeyLocksAcquireHonorsCancellation(t *testing.T) {
	locks := catalog.NewKeyLocks()
	if err := locks.Acquire(context.Background(), "k"); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := locks.Acquire(ctx, "k"); err == nil {
		t.Fatal("expected context error while lock held")
	}
	if !locks.TryAcquire("other") {
		t.Error("independent keys must not interfere")
	}
}

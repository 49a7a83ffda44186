package scoring

import (
	"testing"
	"time"

	"tonearm/internal/media"
)

func testTracks(titles ...string) []media.Track {
	tracks := make([]media.Track, 0, len(titles))
	for i, title := range titles {
		tracks = append(tracks, media.Track{
			Title:       title,
			Artist:      "The Band",
			Album:       "First Light",
			AlbumArtist: "The Band",
			TrackNumber: i + 1,
			Year:        1999,
			Duration:    3 * time.Minute,
		})
	}
	return tracks
}

func testAlbumCandidate(titles ...string) *media.AlbumCandidate {
	refs := make([]media.TrackRef, 0, len(titles))
	for i, title := range titles {
		refs = append(refs, media.TrackRef{
			Title:       title,
			TrackNumber: i + 1,
			Duration:    3 * time.Minute,
		})
	}
	return &media.AlbumCandidate{
		Album:       "First Light",
		AlbumArtist: "The Band",
		Year:        1999,
		Source:      "test",
		Tracks:      refs,
	}
}

func TestAlbumDistancePerfectMatch(t *testing.T) {
	engine := NewEngine(DefaultWeights())
	obs := testTracks("Dawn", "Noon", "Dusk")
	cand := testAlbumCandidate("Dawn", "Noon", "Dusk")

	distance, alignment := engine.AlbumDistance(obs, cand)
	if distance != 0 {
		t.Errorf("distance = %v, want 0 for identical metadata", distance)
	}
	if len(alignment.Pairs) != 3 {
		t.Errorf("pairs = %d, want 3", len(alignment.Pairs))
	}
	if len(alignment.UnmatchedObserved)+len(alignment.UnmatchedReferences) != 0 {
		t.Error("expected no unmatched tracks")
	}
}

func TestAlbumDistanceDeterministic(t *testing.T) {
	engine := NewEngine(DefaultWeights())
	obs := testTracks("Dawn", "Noon", "Dusk")
	cand := testAlbumCandidate("Dawn", "Midday", "Dusk")

	first, _ := engine.AlbumDistance(obs, cand)
	for i := 0; i < 50; i++ {
		again, _ := engine.AlbumDistance(obs, cand)
		if again != first {
			t.Fatalf("distance changed across invocations: %v vs %v", first, again)
		}
	}
}

func TestAlbumDistanceBounds(t *testing.T) {
	engine := NewEngine(DefaultWeights())
	obs := testTracks("Completely", "Different", "Words")
	cand := testAlbumCandidate("Xylophone", "Quasar", "Jigsaw")
	cand.Album = "Unrelated"
	cand.AlbumArtist = "Nobody"
	cand.Year = 1950

	distance, _ := engine.AlbumDistance(obs, cand)
	if distance < 0 || distance > 1 {
		t.Errorf("distance = %v, out of [0,1]", distance)
	}
	if distance < 0.5 {
		t.Errorf("distance = %v, expected a heavy mismatch to score high", distance)
	}
}

func TestAlignToleratesLengthMismatch(t *testing.T) {
	engine := NewEngine(DefaultWeights())
	obs := testTracks("One", "Two", "Three")

	missing := testAlbumCandidate("One", "Two")
	dMissing, aMissing := engine.AlbumDistance(obs, missing)
	if len(aMissing.UnmatchedObserved) != 1 {
		t.Errorf("unmatched observed = %d, want 1", len(aMissing.UnmatchedObserved))
	}

	extra := testAlbumCandidate("One", "Two", "Three", "Four")
	dExtra, aExtra := engine.AlbumDistance(obs, extra)
	if len(aExtra.UnmatchedReferences) != 1 {
		t.Errorf("unmatched references = %d, want 1", len(aExtra.UnmatchedReferences))
	}

	exact := testAlbumCandidate("One", "Two", "Three")
	dExact, _ := engine.AlbumDistance(obs, exact)
	if dExact >= dMissing || dExact >= dExtra {
		t.Errorf("exact match (%v) should score below missing (%v) and extra (%v)", dExact, dMissing, dExtra)
	}
}

func TestUnmatchedPenaltyScalesWithMismatch(t *testing.T) {
	engine := NewEngine(DefaultWeights())
	obs := testTracks("One", "Two", "Three", "Four")

	oneShort, _ := engine.AlbumDistance(obs, testAlbumCandidate("One", "Two", "Three"))
	twoShort, _ := engine.AlbumDistance(obs, testAlbumCandidate("One", "Two"))
	if oneShort >= twoShort {
		t.Errorf("one missing (%v) should score below two missing (%v)", oneShort, twoShort)
	}
}

func TestRankAlbumsSortedAscending(t *testing.T) {
	engine := NewEngine(DefaultWeights())
	obs := testTracks("Dawn", "Noon", "Dusk")

	cands := []*media.AlbumCandidate{
		testAlbumCandidate("Aardvark", "Bobcat", "Cheetah"),
		testAlbumCandidate("Dawn", "Noon", "Dusk"),
		testAlbumCandidate("Dawn", "Midday", "Dusk"),
	}
	ranked := engine.RankAlbums(obs, cands, "")
	if len(ranked) != 3 {
		t.Fatalf("ranked = %d, want 3", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Distance < ranked[i-1].Distance {
			t.Fatalf("ranking not ascending at %d: %v then %v", i, ranked[i-1].Distance, ranked[i].Distance)
		}
	}
	if ranked[0].Album.Tracks[1].Title != "Noon" {
		t.Errorf("best candidate should be the exact match, got %q", ranked[0].Describe())
	}
	for _, c := range ranked {
		if c.Distance < 0 || c.Distance > 1 {
			t.Errorf("distance %v out of [0,1]", c.Distance)
		}
	}
}

func TestRankPrefersPriorSourceOnTies(t *testing.T) {
	engine := NewEngine(DefaultWeights())
	obs := testTracks("Dawn", "Noon", "Dusk")

	first := testAlbumCandidate("Dawn", "Noon", "Dusk")
	first.SourceID = "release-a"
	second := testAlbumCandidate("Dawn", "Noon", "Dusk")
	second.SourceID = "release-b"

	ranked := engine.RankAlbums(obs, []*media.AlbumCandidate{first, second}, "release-b")
	if ranked[0].SourceID() != "release-b" {
		t.Errorf("expected prior source to win the tie, got %q", ranked[0].SourceID())
	}

	// Without a prior, input order decides.
	ranked = engine.RankAlbums(obs, []*media.AlbumCandidate{first, second}, "")
	if ranked[0].SourceID() != "release-a" {
		t.Errorf("expected input order on ties, got %q", ranked[0].SourceID())
	}
}

func TestTrackDistanceSingleton(t *testing.T) {
	engine := NewEngine(DefaultWeights())
	obs := media.Track{Title: "Lonesome Road", Artist: "Solo Act", Duration: 200 * time.Second}

	exact := &media.TrackCandidate{Track: media.TrackRef{Title: "Lonesome Road", Artist: "Solo Act", Duration: 200 * time.Second}}
	if d := engine.TrackDistance(obs, exact); d != 0 {
		t.Errorf("exact track distance = %v, want 0", d)
	}

	far := &media.TrackCandidate{Track: media.TrackRef{Title: "Other Song", Artist: "Another Artist", Duration: 100 * time.Second}}
	if d := engine.TrackDistance(obs, far); d <= 0.3 {
		t.Errorf("mismatch distance = %v, expected well above zero", d)
	}
}

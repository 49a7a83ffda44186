package scoring

import (
	"tonearm/internal/media"
	"tonearm/internal/textutil"
)

// Pair links one observed track to the reference track it matched.
type Pair struct {
	ObservedIndex  int
	ReferenceIndex int
	Distance       float64
}

// Alignment is the result of matching observed tracks against an album
// candidate's ordered reference list.
type Alignment struct {
	Pairs               []Pair
	UnmatchedObserved   []int
	UnmatchedReferences []int
}

// align performs a greedy bipartite matching: observed tracks are taken
// in input order and each claims the unmatched reference track with the
// lowest title distance. Ties break on the lower reference index so the
// result never depends on map iteration order.
func (e *Engine) align(obs []media.Track, refs []media.TrackRef) Alignment {
	alignment := Alignment{}
	taken := make([]bool, len(refs))

	for oi, track := range obs {
		best := -1
		bestTitle := 0.0
		for ri, ref := range refs {
			if taken[ri] {
				continue
			}
			d := textutil.Distance(track.Title, ref.Title)
			if best == -1 || d < bestTitle {
				best = ri
				bestTitle = d
			}
		}
		if best == -1 {
			alignment.UnmatchedObserved = append(alignment.UnmatchedObserved, oi)
			continue
		}
		taken[best] = true
		alignment.Pairs = append(alignment.Pairs, Pair{
			ObservedIndex:  oi,
			ReferenceIndex: best,
			Distance:       e.trackPairDistance(track, refs[best]),
		})
	}

	for ri := range refs {
		if !taken[ri] {
			alignment.UnmatchedReferences = append(alignment.UnmatchedReferences, ri)
		}
	}
	return alignment
}

package scoring

import (
	"sort"

	"tonearm/internal/media"
)

// Engine computes and ranks candidate distances. It holds only the
// weight table; all scoring is stateless.
type Engine struct {
	weights Weights
}

// NewEngine constructs an engine with the given weights.
func NewEngine(w Weights) *Engine {
	return &Engine{weights: w}
}

// RankAlbums scores album candidates against the observed tracks and
// returns them sorted ascending by distance. priorSourceID, when set,
// wins ties at exactly equal distance so re-imports remain stable; all
// other ties keep input order.
func (e *Engine) RankAlbums(obs []media.Track, cands []*media.AlbumCandidate, priorSourceID string) []media.Candidate {
	scored := make([]media.Candidate, 0, len(cands))
	for _, cand := range cands {
		if cand == nil {
			continue
		}
		distance, _ := e.AlbumDistance(obs, cand)
		scored = append(scored, media.Candidate{Album: cand, Distance: distance})
	}
	rank(scored, priorSourceID)
	return scored
}

// RankTracks scores singleton track candidates and returns them sorted
// ascending by distance with the same tie-break rules as RankAlbums.
func (e *Engine) RankTracks(obs media.Track, cands []*media.TrackCandidate, priorSourceID string) []media.Candidate {
	scored := make([]media.Candidate, 0, len(cands))
	for _, cand := range cands {
		if cand == nil {
			continue
		}
		scored = append(scored, media.Candidate{Track: cand, Distance: e.TrackDistance(obs, cand)})
	}
	rank(scored, priorSourceID)
	return scored
}

// rank sorts ascending by distance. At exactly equal distance a
// candidate matching priorSourceID sorts first; otherwise input order is
// preserved (stable sort).
func rank(cands []media.Candidate, priorSourceID string) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Distance != cands[j].Distance {
			return cands[i].Distance < cands[j].Distance
		}
		if priorSourceID == "" {
			return false
		}
		iPrior := cands[i].SourceID() == priorSourceID
		jPrior := cands[j].SourceID() == priorSourceID
		return iPrior && !jPrior
	})
}

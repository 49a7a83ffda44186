// Package scoring ranks metadata candidates against observed tracks.
//
// Every comparison produces a normalized distance in [0,1] where 0 is a
// perfect match. Album candidates are aligned against observed tracks
// with a greedy bipartite matching before per-track distances are
// aggregated, so missing and extra tracks degrade the score instead of
// failing the comparison. All functions are pure and deterministic:
// identical inputs always produce bit-identical distances.
package scoring

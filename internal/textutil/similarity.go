package textutil

import (
	edlib "github.com/hbollon/go-edlib"
)

// Similarity computes an edit-distance similarity between two strings in
// [0,1] after normalization. Two empty values are considered identical;
// one empty value against a non-empty one scores zero.
func Similarity(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)
	if na == nb {
		return 1
	}
	if na == "" || nb == "" {
		return 0
	}
	sim, err := edlib.StringsSimilarity(na, nb, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return float64(sim)
}

// Distance is the complement of Similarity, clamped to [0,1].
func Distance(a, b string) float64 {
	return 1 - Similarity(a, b)
}

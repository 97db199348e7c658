// Package fuzzy normalizes github.com/lithammer/fuzzysearch's edit
// distance into the [0, 1] similarity score spec.md's fuzzy-match
// threshold is expressed in (1 = identical, 0 = maximally dissimilar),
// matching the shape of the upstream's hand-rolled levenshtein_norm.
// Grounded on the teacher's runtime/planner/planner.go, which already
// leans on fuzzy.RankFindFold for its own closest-match search.
package fuzzy

import "github.com/lithammer/fuzzysearch/fuzzy"

// Similarity returns the normalized similarity of source against target,
// in [0, 1]. Two empty strings are defined as identical.
func Similarity(source, target string) float64 {
	if source == "" && target == "" {
		return 1
	}
	maxLen := len(source)
	if len(target) > maxLen {
		maxLen = len(target)
	}
	if maxLen == 0 {
		return 1
	}
	dist := fuzzy.LevenshteinDistance(source, target)
	sim := 1 - float64(dist)/float64(maxLen)
	if sim < 0 {
		return 0
	}
	return sim
}

// BestMatch returns the candidate in candidates most similar to source
// and its similarity score. ok is false when candidates is empty.
func BestMatch(source string, candidates []string) (best string, score float64, ok bool) {
	if len(candidates) == 0 {
		return "", 0, false
	}
	bestScore := -1.0
	for _, c := range candidates {
		s := Similarity(source, c)
		if s > bestScore {
			bestScore = s
			best = c
		}
	}
	return best, bestScore, true
}

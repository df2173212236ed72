package library

import (
	"sort"

	"github.com/hbollon/go-edlib"
)

// SuggestFunction returns the known function names in candidates
// ranked by Jaro-Winkler similarity to want, most similar first. It is
// consulted when ResolveFunction misses, so a builder or CLI command
// can say "did you mean strcpy?" instead of just failing (spec.md §9
// "a rewrite should add a 'did you mean' suggestion").
func SuggestFunction(want string, candidates []string) []string {
	type scored struct {
		name  string
		score float32
	}

	scores := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		sim, err := edlib.StringsSimilarity(want, c, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		scores = append(scores, scored{name: c, score: sim})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = s.name
	}
	return out
}

// TopSuggestions returns at most n entries from SuggestFunction's
// ranking.
func TopSuggestions(want string, candidates []string, n int) []string {
	ranked := SuggestFunction(want, candidates)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

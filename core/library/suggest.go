package library

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// minSuggestionScore is the Jaro-Winkler similarity a playlist needs to be
// offered as a "did you mean".
const minSuggestionScore = 0.8

// Suggest returns the playlist closest to query, or "" when none is close enough.
func Suggest(query string, playlists []string) string {
	best, bestScore := "", 0.0
	q := strings.ToLower(query)
	jw := metrics.NewJaroWinkler()
	for _, p := range playlists {
		score := strutil.Similarity(q, strings.ToLower(p), jw)
		if score > bestScore {
			best, bestScore = p, score
		}
	}
	if bestScore < minSuggestionScore {
		return ""
	}
	return best
}

// Rank orders playlists by similarity to query, dropping the ones below
// threshold. An empty query returns the playlists unchanged.
func Rank(query string, playlists []string, threshold float64) []string {
	if strings.TrimSpace(query) == "" {
		return playlists
	}

	type scored struct {
		name  string
		score float64
	}
	q := strings.ToLower(query)
	jw := metrics.NewJaroWinkler()
	var hits []scored
	for _, p := range playlists {
		lp := strings.ToLower(p)
		score := strutil.Similarity(q, lp, jw)
		if strings.Contains(lp, q) {
			score = 1
		}
		if score >= threshold {
			hits = append(hits, scored{p, score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}

package analytics

import (
	"fmt"
	"sort"

	"crateaudit/model"
)

// CompareStats lists the fields where two statistics records disagree, e.g.
// "format_distribution[MP3]: 3 != 2". It is used to check analyzer-provided
// stats against a local recomputation. Keys counted as zero on one side and
// missing on the other do not count as a difference.
func CompareStats(a, b model.LibraryStats) []string {
	var diffs []string
	if a.TotalTracks != b.TotalTracks {
		diffs = append(diffs, fmt.Sprintf("total_tracks: %d != %d", a.TotalTracks, b.TotalTracks))
	}
	if a.TotalGigReady != b.TotalGigReady {
		diffs = append(diffs, fmt.Sprintf("total_gig_ready: %d != %d", a.TotalGigReady, b.TotalGigReady))
	}
	diffs = append(diffs, compareDistribution("format_distribution", a.FormatDistribution, b.FormatDistribution)...)
	diffs = append(diffs, compareDistribution("issue_distribution", a.IssueDistribution, b.IssueDistribution)...)
	diffs = append(diffs, compareDistribution("bpm_distribution", a.BPMDistribution, b.BPMDistribution)...)
	diffs = append(diffs, compareDistribution("key_distribution", a.KeyDistribution, b.KeyDistribution)...)
	diffs = append(diffs, compareDistribution("genre_distribution", a.GenreDistribution, b.GenreDistribution)...)
	return diffs
}

func compareDistribution(name string, a, b model.Distribution) []string {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var diffs []string
	for _, k := range sorted {
		if a[k] != b[k] {
			diffs = append(diffs, fmt.Sprintf("%s[%s]: %d != %d", name, k, a[k], b[k]))
		}
	}
	return diffs
}

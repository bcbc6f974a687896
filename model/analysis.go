package model

// Distribution maps a category key to a track count.
type Distribution map[string]int

// Total 返回所有分类的计数之和
func (d Distribution) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

// LibraryStats is the summary derived from a track collection.
type LibraryStats struct {
	TotalTracks        int          `json:"total_tracks"`
	TotalGigReady      int          `json:"total_gig_ready"`
	FormatDistribution Distribution `json:"format_distribution"`
	IssueDistribution  Distribution `json:"issue_distribution"`
	BPMDistribution    Distribution `json:"bpm_distribution"`
	KeyDistribution    Distribution `json:"key_distribution"`
	GenreDistribution  Distribution `json:"genre_distribution"`
}

// AnalysisResult is what the analyzer hands over for one library load.
// The baseline and every filtered view share this shape.
type AnalysisResult struct {
	Stats         LibraryStats  `json:"stats"`
	Tracks        []TrackRecord `json:"tracks"`
	FlaggedTracks []TrackRecord `json:"flagged_tracks,omitempty"`
}

// FilteredAnalysisResult is an AnalysisResult derived from a baseline and a playlist selector.
type FilteredAnalysisResult = AnalysisResult

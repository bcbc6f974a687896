package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"crateaudit/core/analytics"
	"crateaudit/model"
)

// ErrInvalidExport is returned for documents that are not an analysis result.
var ErrInvalidExport = errors.New("invalid analysis export")

// maxExportSize 单个导出文件的大小上限
const maxExportSize = 64 << 20

// exportDocument mirrors model.AnalysisResult with pointers so that absent
// sections can be told apart from empty ones.
type exportDocument struct {
	Stats         *model.LibraryStats  `json:"stats"`
	Tracks        *[]model.TrackRecord `json:"tracks"`
	FlaggedTracks []model.TrackRecord  `json:"flagged_tracks"`
}

// Export is a decoded analyzer document.
type Export struct {
	Result model.AnalysisResult
	// StatsRecomputed is set when the document carried no stats and they
	// were derived locally.
	StatsRecomputed bool
	// Mismatches lists where provided stats disagree with a recomputation.
	Mismatches []string
}

// fillStats completes provided stats from a recomputation. Older analyzers
// only send totals plus the format and issue distributions; absent
// distributions are taken from the recomputation and every vocabulary type
// gets an issue_distribution entry.
func fillStats(st, recomputed model.LibraryStats, vocab analytics.IssueVocabulary) model.LibraryStats {
	if st.FormatDistribution == nil {
		st.FormatDistribution = recomputed.FormatDistribution
	}
	if st.BPMDistribution == nil {
		st.BPMDistribution = recomputed.BPMDistribution
	}
	if st.KeyDistribution == nil {
		st.KeyDistribution = recomputed.KeyDistribution
	}
	if st.GenreDistribution == nil {
		st.GenreDistribution = recomputed.GenreDistribution
	}
	if st.IssueDistribution == nil {
		st.IssueDistribution = model.Distribution{}
	}
	for _, typ := range vocab.Types() {
		if _, ok := st.IssueDistribution[typ]; !ok {
			st.IssueDistribution[typ] = 0
		}
	}
	return st
}

// DecodeExport reads an analysis result. Missing issue or playlist arrays
// become empty, missing stats are recomputed and missing flagged tracks are
// derived from the track list.
func DecodeExport(r io.Reader, agg *analytics.Aggregator) (*Export, error) {
	var doc exportDocument
	dec := json.NewDecoder(io.LimitReader(r, maxExportSize))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}
	if doc.Tracks == nil {
		return nil, fmt.Errorf("%w: missing tracks", ErrInvalidExport)
	}

	tracks := *doc.Tracks
	for i := range tracks {
		if tracks[i].Issues == nil {
			tracks[i].Issues = []model.Issue{}
		}
		if tracks[i].Playlists == nil {
			tracks[i].Playlists = []string{}
		}
	}

	recomputed := agg.Aggregate(tracks)
	out := &Export{Result: model.AnalysisResult{Tracks: tracks}}
	if doc.Stats == nil {
		out.Result.Stats = recomputed
		out.StatsRecomputed = true
	} else {
		out.Result.Stats = fillStats(*doc.Stats, recomputed, agg.Vocabulary())
		out.Mismatches = analytics.CompareStats(out.Result.Stats, recomputed)
	}

	if doc.FlaggedTracks != nil {
		out.Result.FlaggedTracks = doc.FlaggedTracks
	} else {
		out.Result.FlaggedTracks = analytics.FlaggedTracks(tracks)
	}
	return out, nil
}

package analytics

import (
	"math"
	"strconv"
	"strings"

	"crateaudit/model"
)

// Aggregator reduces track collections into LibraryStats against a fixed
// issue vocabulary. It holds no mutable state and is safe for concurrent use.
type Aggregator struct {
	vocab IssueVocabulary
}

// NewAggregator 创建统计聚合器
func NewAggregator(vocab IssueVocabulary) *Aggregator {
	return &Aggregator{vocab: vocab}
}

var defaultAggregator = NewAggregator(DefaultVocabulary)

// Vocabulary returns the issue vocabulary the aggregator counts against.
func (a *Aggregator) Vocabulary() IssueVocabulary {
	return a.vocab
}

// Aggregate computes statistics over tracks using DefaultVocabulary.
func Aggregate(tracks []model.TrackRecord) model.LibraryStats {
	return defaultAggregator.Aggregate(tracks)
}

// Aggregate computes statistics over tracks in a single pass.
func (a *Aggregator) Aggregate(tracks []model.TrackRecord) model.LibraryStats {
	stats := a.emptyStats()
	stats.TotalTracks = len(tracks)

	for i := range tracks {
		t := &tracks[i]

		stats.FormatDistribution[FormatKey(t.Kind)]++

		for _, issue := range t.Issues {
			if a.vocab.Contains(issue.IssueType) {
				stats.IssueDistribution[issue.IssueType]++
			}
		}

		if IsGigReady(t) {
			stats.TotalGigReady++
		}

		stats.GenreDistribution[t.Genre]++
		stats.KeyDistribution[t.Tonality]++

		if bucket, ok := BPMBucket(float64(t.BPM)); ok {
			stats.BPMDistribution[bucket]++
		}
	}

	return stats
}

// emptyStats 所有分布均非 nil，问题分布预置词表中的全部键
func (a *Aggregator) emptyStats() model.LibraryStats {
	issues := make(model.Distribution, a.vocab.Len())
	for _, t := range a.vocab.types {
		issues[t] = 0
	}
	return model.LibraryStats{
		FormatDistribution: make(model.Distribution),
		IssueDistribution:  issues,
		BPMDistribution:    make(model.Distribution),
		KeyDistribution:    make(model.Distribution),
		GenreDistribution:  make(model.Distribution),
	}
}

// FormatKey returns the first whitespace-delimited token of a kind string,
// e.g. "MP3" for "MP3 CBR 320kbps". An empty kind yields "".
func FormatKey(kind string) string {
	fields := strings.Fields(kind)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// BPMBucket returns the decade label for a tempo: "120s" for 123, "0s" for 9.5.
// Unknown tempos (<= 0, NaN, Inf) report false.
func BPMBucket(bpm float64) (string, bool) {
	if !(bpm > 0) || math.IsInf(bpm, 0) {
		return "", false
	}
	decade := int64(math.Floor(bpm / 10))
	return strconv.FormatInt(decade*10, 10) + "s", true
}

// MergeStats sums two statistics records element-wise. Aggregating the union
// of two disjoint collections equals merging their separate aggregates.
func MergeStats(a, b model.LibraryStats) model.LibraryStats {
	return model.LibraryStats{
		TotalTracks:        a.TotalTracks + b.TotalTracks,
		TotalGigReady:      a.TotalGigReady + b.TotalGigReady,
		FormatDistribution: mergeDistribution(a.FormatDistribution, b.FormatDistribution),
		IssueDistribution:  mergeDistribution(a.IssueDistribution, b.IssueDistribution),
		BPMDistribution:    mergeDistribution(a.BPMDistribution, b.BPMDistribution),
		KeyDistribution:    mergeDistribution(a.KeyDistribution, b.KeyDistribution),
		GenreDistribution:  mergeDistribution(a.GenreDistribution, b.GenreDistribution),
	}
}

func mergeDistribution(a, b model.Distribution) model.Distribution {
	out := make(model.Distribution, len(a)+len(b))
	for k, n := range a {
		out[k] += n
	}
	for k, n := range b {
		out[k] += n
	}
	return out
}

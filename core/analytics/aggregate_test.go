package analytics

import (
	"reflect"
	"testing"

	"crateaudit/model"
)

func TestAggregateScenario(t *testing.T) {
	stats := Aggregate(scenarioTracks())

	if stats.TotalTracks != 3 {
		t.Errorf("TotalTracks = %d; want 3", stats.TotalTracks)
	}
	if stats.TotalGigReady != 1 {
		t.Errorf("TotalGigReady = %d; want 1", stats.TotalGigReady)
	}
	want := model.Distribution{"MP3": 1, "WAV": 1, "AAC": 1}
	if !reflect.DeepEqual(stats.FormatDistribution, want) {
		t.Errorf("FormatDistribution = %v; want %v", stats.FormatDistribution, want)
	}

	subset := FilterByPlaylist(scenarioTracks(), peakSet)
	if len(subset) != 2 || subset[0].ID != "A" || subset[1].ID != "C" {
		t.Fatalf("FilterByPlaylist = %v; want [A C]", ids(subset))
	}
	sub := Aggregate(subset)
	if sub.TotalTracks != 2 || sub.TotalGigReady != 0 {
		t.Errorf("subset stats = %d tracks / %d ready; want 2 / 0", sub.TotalTracks, sub.TotalGigReady)
	}
}

func TestAggregateDistributions(t *testing.T) {
	stats := Aggregate(libraryTracks())

	if got := stats.FormatDistribution.Total(); got != stats.TotalTracks {
		t.Errorf("format total = %d; want %d", got, stats.TotalTracks)
	}
	if stats.FormatDistribution[""] != 1 {
		t.Errorf("empty kind should count under the empty key, got %v", stats.FormatDistribution)
	}

	wantIssues := model.Distribution{
		model.IssueLowBitrate:   1,
		model.IssueMissingCues:  1,
		model.IssueBrokenLink:   1,
		model.IssueDuplicate:    1,
		model.IssueDynamicTempo: 1,
	}
	if !reflect.DeepEqual(stats.IssueDistribution, wantIssues) {
		t.Errorf("IssueDistribution = %v; want %v", stats.IssueDistribution, wantIssues)
	}

	wantBPM := model.Distribution{"120s": 2, "130s": 1, "170s": 1}
	if !reflect.DeepEqual(stats.BPMDistribution, wantBPM) {
		t.Errorf("BPMDistribution = %v; want %v", stats.BPMDistribution, wantBPM)
	}

	// placeholders are tallied like any other value
	wantGenres := model.Distribution{"House": 2, "Techno": 1, "-": 1, "Unknown": 1, "": 1}
	if !reflect.DeepEqual(stats.GenreDistribution, wantGenres) {
		t.Errorf("GenreDistribution = %v; want %v", stats.GenreDistribution, wantGenres)
	}
	wantKeys := model.Distribution{"8A": 2, "5A": 1, "": 1, "11B": 1, "-": 1}
	if !reflect.DeepEqual(stats.KeyDistribution, wantKeys) {
		t.Errorf("KeyDistribution = %v; want %v", stats.KeyDistribution, wantKeys)
	}

	// 1 (MP3 320 + cues), 2 (WAV), 4 (AIFF), 5 (AAC 256), 6 (no kind)
	if stats.TotalGigReady != 5 {
		t.Errorf("TotalGigReady = %d; want 5", stats.TotalGigReady)
	}
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil)

	if stats.TotalTracks != 0 || stats.TotalGigReady != 0 {
		t.Errorf("empty stats = %+v", stats)
	}
	if len(stats.IssueDistribution) != DefaultVocabulary.Len() {
		t.Errorf("issue keys = %d; want %d", len(stats.IssueDistribution), DefaultVocabulary.Len())
	}
	for _, k := range DefaultVocabulary.Types() {
		if n, ok := stats.IssueDistribution[k]; !ok || n != 0 {
			t.Errorf("IssueDistribution[%q] = %d, %v; want 0, true", k, n, ok)
		}
	}
	if stats.FormatDistribution == nil || stats.BPMDistribution == nil ||
		stats.KeyDistribution == nil || stats.GenreDistribution == nil {
		t.Error("distributions must be non-nil")
	}
	if GigReadyPercent(stats) != 0 {
		t.Errorf("GigReadyPercent of empty stats = %v; want 0", GigReadyPercent(stats))
	}
}

func TestAggregateIdempotent(t *testing.T) {
	tracks := libraryTracks()
	first := Aggregate(tracks)
	second := Aggregate(tracks)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Aggregate not idempotent:\n%+v\n%+v", first, second)
	}
	if !reflect.DeepEqual(tracks, libraryTracks()) {
		t.Error("Aggregate modified its input")
	}
}

func TestAggregateLinear(t *testing.T) {
	all := libraryTracks()
	for split := 0; split <= len(all); split++ {
		left, right := all[:split], all[split:]
		merged := MergeStats(Aggregate(left), Aggregate(right))
		whole := Aggregate(all)
		if !reflect.DeepEqual(merged, whole) {
			t.Errorf("split %d: merged %+v; want %+v", split, merged, whole)
		}
	}
}

func TestAggregateGigReadyBound(t *testing.T) {
	tracks := libraryTracks()
	for n := 0; n <= len(tracks); n++ {
		stats := Aggregate(tracks[:n])
		if stats.TotalGigReady > stats.TotalTracks {
			t.Errorf("n=%d: gig ready %d > total %d", n, stats.TotalGigReady, stats.TotalTracks)
		}
		if n > 0 && stats.FormatDistribution.Total() != n {
			t.Errorf("n=%d: format total %d", n, stats.FormatDistribution.Total())
		}
	}
}

func TestAggregateExtendedVocabulary(t *testing.T) {
	vocab := DefaultVocabulary.Extend("v2", "Clipping")
	stats := NewAggregator(vocab).Aggregate(libraryTracks())

	if stats.IssueDistribution["Clipping"] != 1 {
		t.Errorf("Clipping = %d; want 1", stats.IssueDistribution["Clipping"])
	}
	if _, ok := Aggregate(libraryTracks()).IssueDistribution["Clipping"]; ok {
		t.Error("default vocabulary must not count Clipping")
	}
}

func TestBPMBucket(t *testing.T) {
	tests := []struct {
		bpm    float64
		want   string
		wantOK bool
	}{
		{123, "120s", true},
		{129, "120s", true},
		{129.99, "120s", true},
		{130, "130s", true},
		{174, "170s", true},
		{9.5, "0s", true},
		{10, "10s", true},
		{0, "", false},
		{-12, "", false},
	}

	for _, tt := range tests {
		got, ok := BPMBucket(tt.bpm)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("BPMBucket(%v) = %q, %v; want %q, %v", tt.bpm, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFormatKey(t *testing.T) {
	tests := map[string]string{
		"MP3 CBR 320kbps": "MP3",
		"WAV":             "WAV",
		"  FLAC File":     "FLAC",
		"":                "",
		"   ":             "",
	}
	for kind, want := range tests {
		if got := FormatKey(kind); got != want {
			t.Errorf("FormatKey(%q) = %q; want %q", kind, got, want)
		}
	}
}

func ids(tracks []model.TrackRecord) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

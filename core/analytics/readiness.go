package analytics

import (
	"strings"

	"crateaudit/model"
)

// MinCompressedBitrate is the lowest bitrate (kbps) at which a lossy file is
// still considered fit to play out.
const MinCompressedBitrate = 256

// IsCompressed reports whether the track's kind names a lossy codec.
// It is a substring heuristic on "MP3" and "AAC", not a format taxonomy.
func IsCompressed(t *model.TrackRecord) bool {
	kind := strings.ToUpper(t.Kind)
	return strings.Contains(kind, "MP3") || strings.Contains(kind, "AAC")
}

// IsGigReady reports whether a track is safe to perform with: it must have
// cues, and lossy files need at least MinCompressedBitrate.
func IsGigReady(t *model.TrackRecord) bool {
	if !t.HasCues {
		return false
	}
	return !IsCompressed(t) || t.Bitrate >= MinCompressedBitrate
}

// GigReadyPercent 返回可上场曲目占比（0-100），总数为 0 时返回 0
func GigReadyPercent(stats model.LibraryStats) float64 {
	if stats.TotalTracks <= 0 {
		return 0
	}
	return float64(stats.TotalGigReady) * 100 / float64(stats.TotalTracks)
}

// IsPlaceholder reports whether a genre or key value is one of the filler
// values exports use for "not set". Aggregation keeps these; views may hide them.
func IsPlaceholder(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "-", "unknown":
		return true
	}
	return false
}

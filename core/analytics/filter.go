package analytics

import "crateaudit/model"

// AllPlaylists is the selector that disables playlist filtering.
const AllPlaylists = "all"

// FilterByPlaylist projects tracks onto one playlist. AllPlaylists returns the
// input slice itself; any other selector keeps, in input order, the tracks whose
// playlist set contains it exactly.
func FilterByPlaylist(tracks []model.TrackRecord, selector string) []model.TrackRecord {
	if selector == AllPlaylists {
		return tracks
	}

	subset := make([]model.TrackRecord, 0)
	for i := range tracks {
		if tracks[i].InPlaylist(selector) {
			subset = append(subset, tracks[i])
		}
	}
	return subset
}

// FlaggedTracks 返回至少带有一个问题的曲目，保持原有顺序
func FlaggedTracks(tracks []model.TrackRecord) []model.TrackRecord {
	flagged := make([]model.TrackRecord, 0)
	for i := range tracks {
		if tracks[i].Flagged() {
			flagged = append(flagged, tracks[i])
		}
	}
	return flagged
}

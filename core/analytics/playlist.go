package analytics

import (
	"sort"

	"crateaudit/model"
)

// BuildPlaylistIndex returns every playlist id referenced by the tracks,
// deduplicated and sorted ascending.
func BuildPlaylistIndex(tracks []model.TrackRecord) []string {
	seen := make(map[string]struct{})
	for i := range tracks {
		for _, p := range tracks[i].Playlists {
			seen[p] = struct{}{}
		}
	}

	index := make([]string, 0, len(seen))
	for p := range seen {
		index = append(index, p)
	}
	sort.Strings(index)
	return index
}

// containsPlaylist 在已排序的索引中二分查找
func containsPlaylist(index []string, id string) bool {
	i := sort.SearchStrings(index, id)
	return i < len(index) && index[i] == id
}

package analytics

import (
	"reflect"
	"testing"

	"crateaudit/model"
)

func TestBuildPlaylistIndex(t *testing.T) {
	got := BuildPlaylistIndex(libraryTracks())
	want := []string{"Drum & Bass", "Sets/Peak", "Warmup"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildPlaylistIndex = %v; want %v", got, want)
	}
}

func TestBuildPlaylistIndexEmpty(t *testing.T) {
	got := BuildPlaylistIndex([]model.TrackRecord{{ID: "solo"}})
	if got == nil || len(got) != 0 {
		t.Errorf("BuildPlaylistIndex = %#v; want empty, non-nil", got)
	}
}

func TestContainsPlaylist(t *testing.T) {
	index := []string{"A", "B/C", "Z"}
	if !containsPlaylist(index, "B/C") {
		t.Error("B/C should be found")
	}
	if containsPlaylist(index, "B") {
		t.Error("B should not be found")
	}
}

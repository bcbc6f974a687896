package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Issue types emitted by the external analyzer.
const (
	IssueLowBitrate   = "Low Bitrate"
	IssueMissingCues  = "Missing Cues"
	IssueBrokenLink   = "Broken Link"
	IssueDuplicate    = "Duplicate"
	IssueDynamicTempo = "Dynamic Tempo"
)

// Severity 问题严重程度
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is a problem the analyzer detected on a track.
type Issue struct {
	IssueType   string   `json:"issue_type"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Tempo is a beats-per-minute value. Anything that does not decode to a
// number (null, "", "n/a") becomes 0, which means unknown.
type Tempo float64

// UnmarshalJSON 兼容数字与字符串两种写法
func (t *Tempo) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = 0
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*t = Tempo(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = 0
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		*t = 0
		return nil
	}
	*t = Tempo(f)
	return nil
}

// Year is the release year as the analyzer reports it, a free-form string
// ("2019", "-" or ""). Numeric years are accepted and kept as text.
type Year string

// UnmarshalJSON 兼容字符串与数字两种写法
func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*y = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*y = Year(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*y = ""
		return nil
	}
	*y = Year(n.String())
	return nil
}

// TrackRecord represents one analyzed audio file of a DJ library export.
type TrackRecord struct {
	ID         string   `json:"track_id"`
	Name       string   `json:"name"`
	Artist     string   `json:"artist"`
	Album      string   `json:"album"`
	Genre      string   `json:"genre"`
	Kind       string   `json:"kind"`        // e.g. "MP3 File", "WAV File"
	Bitrate    int      `json:"bitrate"`     // kbps, 0 = unknown
	SampleRate int      `json:"sample_rate"` // Hz
	Year       Year     `json:"year"`        // "-" when unknown
	Location   string   `json:"location"`
	Tonality   string   `json:"tonality"`
	BPM        Tempo    `json:"bpm"` // <= 0 means unknown
	HasCues    bool     `json:"has_cues"`
	PlayCount  int      `json:"play_count"`
	Issues     []Issue  `json:"issues"`
	Playlists  []string `json:"playlists"`
}

// UnmarshalJSON accepts "id" as an alias of "track_id".
func (t *TrackRecord) UnmarshalJSON(data []byte) error {
	type plain TrackRecord
	aux := struct {
		*plain
		Alias string `json:"id"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = aux.Alias
	}
	return nil
}

// InPlaylist reports whether the track belongs to the playlist with exactly this id.
func (t *TrackRecord) InPlaylist(id string) bool {
	for _, p := range t.Playlists {
		if p == id {
			return true
		}
	}
	return false
}

// Flagged reports whether the analyzer attached at least one issue.
func (t *TrackRecord) Flagged() bool {
	return len(t.Issues) > 0
}

package analytics

import "crateaudit/model"

const peakSet = "Sets/Peak"

// scenarioTracks 返回 A、B、C 三首示例曲目
func scenarioTracks() []model.TrackRecord {
	return []model.TrackRecord{
		{ID: "A", Name: "Alpha", Kind: "MP3 320", Bitrate: 128, HasCues: true, Playlists: []string{peakSet}},
		{ID: "B", Name: "Bravo", Kind: "WAV", Bitrate: 0, HasCues: true},
		{ID: "C", Name: "Charlie", Kind: "AAC", Bitrate: 256, HasCues: false, Playlists: []string{peakSet}},
	}
}

func libraryTracks() []model.TrackRecord {
	return []model.TrackRecord{
		{
			ID: "1", Name: "Opener", Genre: "House", Tonality: "8A", Kind: "MP3 File", Bitrate: 320,
			BPM: 122, HasCues: true, Playlists: []string{"Warmup", "Sets/Peak"},
		},
		{
			ID: "2", Name: "Roller", Genre: "Techno", Tonality: "5A", Kind: "WAV File", BPM: 130.4, HasCues: true,
			Issues:    []model.Issue{{IssueType: model.IssueDuplicate, Severity: model.SeverityWarning}},
			Playlists: []string{"Sets/Peak"},
		},
		{
			ID: "3", Name: "Rip", Genre: "-", Tonality: "", Kind: "MP3 File", Bitrate: 128, BPM: 0, HasCues: false,
			Issues: []model.Issue{
				{IssueType: model.IssueLowBitrate, Severity: model.SeverityError},
				{IssueType: model.IssueMissingCues, Severity: model.SeverityWarning},
			},
		},
		{
			ID: "4", Name: "Ghost", Genre: "Unknown", Tonality: "11B", Kind: "AIFF File", BPM: 174, HasCues: true,
			Issues: []model.Issue{
				{IssueType: model.IssueBrokenLink, Severity: model.SeverityError},
				{IssueType: "Clipping", Severity: model.SeverityWarning},
			},
			Playlists: []string{"Drum & Bass"},
		},
		{
			ID: "5", Name: "Live Edit", Genre: "House", Tonality: "8A", Kind: "M4A AAC", Bitrate: 256, BPM: 124.9,
			HasCues: true, Issues: []model.Issue{{IssueType: model.IssueDynamicTempo, Severity: model.SeverityWarning}},
			Playlists: []string{"Warmup"},
		},
		{
			ID: "6", Name: "Blank", Genre: "", Tonality: "-", Kind: "", BPM: -1, HasCues: true,
		},
	}
}

package analytics

import (
	"errors"
	"sync"

	"crateaudit/model"
)

var (
	// ErrNoBaseline is returned when a dashboard has no library loaded.
	ErrNoBaseline = errors.New("no library loaded")
	// ErrUnknownPlaylist is returned when selecting a playlist the baseline never references.
	ErrUnknownPlaylist = errors.New("unknown playlist")
)

// DeriveView scopes a baseline to one playlist using DefaultVocabulary.
func DeriveView(baseline model.AnalysisResult, selector string) model.FilteredAnalysisResult {
	return defaultAggregator.DeriveView(baseline, selector)
}

// DeriveView scopes a baseline to one playlist. AllPlaylists hands the
// baseline back as is; the baseline is never modified.
func (a *Aggregator) DeriveView(baseline model.AnalysisResult, selector string) model.FilteredAnalysisResult {
	if selector == AllPlaylists {
		return baseline
	}

	subset := FilterByPlaylist(baseline.Tracks, selector)
	return model.FilteredAnalysisResult{
		Stats:         a.Aggregate(subset),
		Tracks:        subset,
		FlaggedTracks: FlaggedTracks(subset),
	}
}

// View is what the presentation layer renders for one dashboard state.
type View struct {
	LibraryID       string                       `json:"library_id"`
	Selector        string                       `json:"selector"`
	Playlists       []string                     `json:"playlists"`
	Result          model.FilteredAnalysisResult `json:"result"`
	GigReadyPercent float64                      `json:"gig_ready_percent"`
	Suggestion      string                       `json:"suggestion,omitempty"`
}

// NewView assembles a View from an already derived result.
func NewView(libraryID, selector string, playlists []string, result model.FilteredAnalysisResult) View {
	return View{
		LibraryID:       libraryID,
		Selector:        selector,
		Playlists:       playlists,
		Result:          result,
		GigReadyPercent: GigReadyPercent(result.Stats),
	}
}

// Dashboard holds the current baseline and playlist selector of one viewer.
//
// The baseline is either absent or a loaded, immutable snapshot. Every baseline
// transition (Load or Reset) puts the selector back to AllPlaylists. The
// playlist index is computed once per baseline.
type Dashboard struct {
	mu        sync.RWMutex
	agg       *Aggregator
	loaded    bool
	libraryID string
	baseline  model.AnalysisResult
	playlists []string
	selector  string
}

// NewDashboard 创建一个未加载曲库的看板
func NewDashboard(agg *Aggregator) *Dashboard {
	if agg == nil {
		agg = defaultAggregator
	}
	return &Dashboard{agg: agg, selector: AllPlaylists}
}

// Load replaces the baseline wholesale.
func (d *Dashboard) Load(libraryID string, baseline model.AnalysisResult) {
	playlists := BuildPlaylistIndex(baseline.Tracks)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loaded = true
	d.libraryID = libraryID
	d.baseline = baseline
	d.playlists = playlists
	d.selector = AllPlaylists
}

// Reset drops the baseline.
func (d *Dashboard) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loaded = false
	d.libraryID = ""
	d.baseline = model.AnalysisResult{}
	d.playlists = nil
	d.selector = AllPlaylists
}

// Select changes the playlist selector. It accepts AllPlaylists or any id in
// the current playlist index.
func (d *Dashboard) Select(selector string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.loaded {
		return ErrNoBaseline
	}
	if selector != AllPlaylists && !containsPlaylist(d.playlists, selector) {
		return ErrUnknownPlaylist
	}
	d.selector = selector
	return nil
}

// Loaded 是否已加载曲库
func (d *Dashboard) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

// LibraryID returns the id of the loaded baseline, or "".
func (d *Dashboard) LibraryID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.libraryID
}

// Selector returns the current playlist selector.
func (d *Dashboard) Selector() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selector
}

// Playlists returns a copy of the playlist index of the loaded baseline.
func (d *Dashboard) Playlists() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.playlists))
	copy(out, d.playlists)
	return out
}

// View derives the result for the current baseline and selector.
func (d *Dashboard) View() (View, error) {
	d.mu.RLock()
	loaded, id, baseline, selector := d.loaded, d.libraryID, d.baseline, d.selector
	playlists := make([]string, len(d.playlists))
	copy(playlists, d.playlists)
	d.mu.RUnlock()

	if !loaded {
		return View{}, ErrNoBaseline
	}
	return NewView(id, selector, playlists, d.agg.DeriveView(baseline, selector)), nil
}

package library

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"crateaudit/core/analytics"
	"crateaudit/db"
	"crateaudit/model"
	"crateaudit/repository"

	"gorm.io/driver/sqlite"
	gormlogger "gorm.io/gorm/logger"
)

const uploadDoc = `{
  "tracks": [
    {"id": "1", "name": "Opener", "kind": "MP3 File", "bitrate": 320, "bpm": 122, "has_cues": true,
     "playlists": ["Warmup", "Peak Time"]},
    {"id": "2", "name": "Rip", "kind": "MP3 File", "bitrate": 128, "bpm": 131, "has_cues": true,
     "issues": [{"issue_type": "Low Bitrate", "description": "128 kbps", "severity": "error"}],
     "playlists": ["Peak Time"]},
    {"id": "3", "name": "Master", "kind": "WAV File", "bpm": 0, "has_cues": false}
  ]
}`

type memoryStore struct {
	objects map[string][]byte
	failPut bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (s *memoryStore) PutExport(_ context.Context, userID int64, libraryID string, data []byte) (string, error) {
	if s.failPut {
		return "", errors.New("bucket unavailable")
	}
	key := fmt.Sprintf("exports/%d/%s.json", userID, libraryID)
	s.objects[key] = data
	return key, nil
}

func (s *memoryStore) GetExport(_ context.Context, key string) ([]byte, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (s *memoryStore) RemoveExport(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func newTestService(t *testing.T, store ExportStore) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := db.Open(sqlite.Open(dsn), gormlogger.Silent)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return NewService(repository.NewGormLibraryRepository(gdb), store, nil, nil)
}

func TestImportStoresBaselineAndExport(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(t, store)
	ctx := context.Background()

	lib, err := svc.Import(ctx, 3, "collection.json", model.LibrarySourceUpload, []byte(uploadDoc))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if lib.TrackCount != 3 || lib.FlaggedCount != 1 {
		t.Errorf("counters = %d/%d", lib.TrackCount, lib.FlaggedCount)
	}
	if _, ok := store.objects[lib.ObjectKey]; !ok {
		t.Errorf("raw export not archived under %q", lib.ObjectKey)
	}

	got, err := svc.Get(ctx, 3, lib.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Baseline.Stats.TotalTracks != 3 || got.Baseline.Stats.TotalGigReady != 1 {
		t.Errorf("stored stats = %+v", got.Baseline.Stats)
	}
}

func TestRawExport(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(t, newMemoryStore())
	lib, err := svc.Import(ctx, 2, "a.json", model.LibrarySourceUpload, []byte(uploadDoc))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	_, data, err := svc.RawExport(ctx, 2, lib.ID)
	if err != nil || string(data) != uploadDoc {
		t.Errorf("RawExport = %d bytes, %v", len(data), err)
	}

	if _, _, err := svc.RawExport(ctx, 3, lib.ID); !IsNotFound(err) {
		t.Errorf("foreign RawExport = %v, want not found", err)
	}
}

func TestRawExportWithoutStore(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	lib, err := svc.Import(ctx, 2, "a.json", model.LibrarySourceUpload, []byte(uploadDoc))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if _, _, err := svc.RawExport(ctx, 2, lib.ID); !errors.Is(err, ErrNoExport) {
		t.Errorf("RawExport = %v, want ErrNoExport", err)
	}
}

func TestImportRejectsInvalidDocument(t *testing.T) {
	svc := newTestService(t, nil)
	if _, err := svc.Import(context.Background(), 1, "bad.json", model.LibrarySourceUpload, []byte(`{"stats": {}}`)); err == nil {
		t.Fatal("expected an error for a document without tracks")
	}
}

func TestImportSurvivesArchiveFailure(t *testing.T) {
	store := newMemoryStore()
	store.failPut = true
	svc := newTestService(t, store)

	lib, err := svc.Import(context.Background(), 1, "a.json", model.LibrarySourceWatch, []byte(uploadDoc))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if lib.ObjectKey != "" {
		t.Errorf("object key = %q, want empty", lib.ObjectKey)
	}
}

func TestServiceView(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	lib, err := svc.Import(ctx, 1, "a.json", model.LibrarySourceUpload, []byte(uploadDoc))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	all := svc.View(ctx, lib, "")
	if all.Selector != analytics.AllPlaylists || all.Result.Stats.TotalTracks != 3 {
		t.Errorf("all view = %+v", all.Result.Stats)
	}
	if want := []string{"Peak Time", "Warmup"}; fmt.Sprint(all.Playlists) != fmt.Sprint(want) {
		t.Errorf("playlists = %v, want %v", all.Playlists, want)
	}

	peak := svc.View(ctx, lib, "Peak Time")
	if peak.Result.Stats.TotalTracks != 2 || peak.Result.Stats.TotalGigReady != 1 {
		t.Errorf("peak stats = %+v", peak.Result.Stats)
	}
	if peak.GigReadyPercent != 50 {
		t.Errorf("gig ready percent = %v, want 50", peak.GigReadyPercent)
	}
	if len(peak.Result.FlaggedTracks) != 1 || peak.Suggestion != "" {
		t.Errorf("peak view = %+v", peak)
	}

	typo := svc.View(ctx, lib, "Peak Tme")
	if typo.Result.Stats.TotalTracks != 0 || len(typo.Result.Tracks) != 0 {
		t.Errorf("unknown selector should give an empty view, got %+v", typo.Result.Stats)
	}
	if typo.Suggestion != "Peak Time" {
		t.Errorf("suggestion = %q, want %q", typo.Suggestion, "Peak Time")
	}
	if lib.Baseline.Stats.TotalTracks != 3 {
		t.Error("baseline mutated by view derivation")
	}
}

func TestServiceHistoryAndDelete(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(t, store)
	ctx := context.Background()

	first, err := svc.Import(ctx, 5, "first.json", model.LibrarySourceUpload, []byte(uploadDoc))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if _, err := svc.Import(ctx, 5, "second.json", model.LibrarySourceUpload, []byte(uploadDoc)); err != nil {
		t.Fatalf("Import: %v", err)
	}

	history, err := svc.History(ctx, 5, 10)
	if err != nil || len(history) != 2 {
		t.Fatalf("History = %d, %v", len(history), err)
	}

	if err := svc.Delete(ctx, 5, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.objects[first.ObjectKey]; ok {
		t.Error("raw export survived delete")
	}
	if _, err := svc.Get(ctx, 5, first.ID); !IsNotFound(err) {
		t.Errorf("Get after delete = %v, want not found", err)
	}
	if err := svc.Delete(ctx, 6, first.ID); !IsNotFound(err) {
		t.Errorf("Delete of foreign library = %v, want not found", err)
	}
}

func TestViewKeyFollowsVocabularyContents(t *testing.T) {
	plain := NewService(nil, nil, nil, analytics.NewAggregator(analytics.DefaultVocabulary))
	extended := NewService(nil, nil, nil, analytics.NewAggregator(analytics.DefaultVocabulary.Extend("v1", "Clipping")))

	a, b := plain.viewKey("lib", "Warmup"), extended.viewKey("lib", "Warmup")
	if a == b {
		t.Errorf("both vocabularies map to %q", a)
	}
	if plain.viewKey("lib", "Warmup") != a {
		t.Error("view key is not stable")
	}
}

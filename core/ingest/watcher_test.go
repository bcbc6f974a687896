package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"crateaudit/core/analytics"
)

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.json")
	if err := os.WriteFile(path, []byte(sparseExport), 0644); err != nil {
		t.Fatal(err)
	}

	var got *Export
	w := NewWatcher(dir, analytics.NewAggregator(analytics.DefaultVocabulary),
		func(ctx context.Context, p string, e *Export) error {
			got = e
			return nil
		})

	if err := w.ProcessFile(context.Background(), path); err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if got == nil || len(got.Result.Tracks) != 2 {
		t.Fatalf("handler got %+v", got)
	}

	if err := w.ProcessFile(context.Background(), filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestWatcherPicksUpNewExports(t *testing.T) {
	dir := t.TempDir()
	seen := make(chan string, 4)
	w := NewWatcher(dir, analytics.NewAggregator(analytics.DefaultVocabulary),
		func(ctx context.Context, p string, e *Export) error {
			seen <- filepath.Base(p)
			return nil
		})
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// give the watcher a moment to register the directory
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "library.json"), []byte(sparseExport), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-seen:
		if name != "library.json" {
			t.Errorf("handled %s; want library.json", name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("export was not picked up")
	}
}

func TestSetDebounceWhileRunning(t *testing.T) {
	dir := t.TempDir()
	seen := make(chan string, 4)
	w := NewWatcher(dir, analytics.NewAggregator(analytics.DefaultVocabulary),
		func(ctx context.Context, p string, e *Export) error {
			seen <- filepath.Base(p)
			return nil
		})
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	time.Sleep(100 * time.Millisecond)
	tuned := make(chan struct{})
	go func() {
		defer close(tuned)
		for i := 0; i < 50; i++ {
			w.SetDebounce(time.Duration(10+i%5) * time.Millisecond)
		}
	}()
	if err := os.WriteFile(filepath.Join(dir, "retuned.json"), []byte(sparseExport), 0644); err != nil {
		t.Fatal(err)
	}
	<-tuned

	select {
	case name := <-seen:
		if name != "retuned.json" {
			t.Errorf("handled %s; want retuned.json", name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("export was not picked up")
	}
}

func TestIsExportFile(t *testing.T) {
	tests := map[string]bool{
		"/drop/library.json": true,
		"/drop/LIB.JSON":     true,
		"/drop/.tmp.json":    false,
		"/drop/library.xml":  false,
	}
	for name, want := range tests {
		if got := isExportFile(name); got != want {
			t.Errorf("isExportFile(%q) = %v; want %v", name, got, want)
		}
	}
}

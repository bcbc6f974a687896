package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"crateaudit/core/analytics"
	"crateaudit/logger"

	"github.com/fsnotify/fsnotify"
)

// Handler receives every export the watcher decodes.
type Handler func(ctx context.Context, path string, export *Export) error

// Watcher turns JSON files dropped into a directory into library loads.
type Watcher struct {
	dir      string
	agg      *analytics.Aggregator
	handle   Handler
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher 创建目录监听器
func NewWatcher(dir string, agg *analytics.Aggregator, handle Handler) *Watcher {
	return &Watcher{
		dir:      dir,
		agg:      agg,
		handle:   handle,
		debounce: 500 * time.Millisecond,
		pending:  make(map[string]*time.Timer),
	}
}

// SetDebounce changes how long a file must stay quiet before it is read.
// It is safe to call while Run is active; pending files keep their old delay.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// Run watches the directory until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create watch directory %s: %w", w.dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	logger.Info("watching for exports", logger.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			w.stopPending()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 || !isExportFile(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", logger.ErrorField(err))
		}
	}
}

// schedule 合并短时间内对同一文件的多次写入
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if err := w.ProcessFile(ctx, path); err != nil {
			logger.Error("failed to ingest export", logger.String("path", path), logger.ErrorField(err))
		}
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// ProcessFile decodes one export file and hands it to the handler.
func (w *Watcher) ProcessFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	export, err := DecodeExport(f, w.agg)
	if err != nil {
		return err
	}

	stats := export.Result.Stats
	logger.Info("export decoded",
		logger.String("path", path),
		logger.Int("tracks", stats.TotalTracks),
		logger.Int("gigReady", stats.TotalGigReady),
		logger.Int("flagged", len(export.Result.FlaggedTracks)),
		logger.Bool("statsRecomputed", export.StatsRecomputed),
		logger.Int("mismatches", len(export.Mismatches)))

	return w.handle(ctx, path, export)
}

func isExportFile(name string) bool {
	base := filepath.Base(name)
	return strings.EqualFold(filepath.Ext(base), ".json") && !strings.HasPrefix(base, ".")
}

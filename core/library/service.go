package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"crateaudit/cache"
	"crateaudit/core/analytics"
	"crateaudit/core/ingest"
	"crateaudit/logger"
	"crateaudit/model"
	"crateaudit/repository"

	"github.com/google/uuid"
)

// ExportStore keeps raw export documents. storage.ExportStore implements it.
type ExportStore interface {
	PutExport(ctx context.Context, userID int64, libraryID string, data []byte) (string, error)
	GetExport(ctx context.Context, key string) ([]byte, error)
	RemoveExport(ctx context.Context, key string) error
}

// ErrNoExport is returned when a library has no archived raw export.
var ErrNoExport = errors.New("no archived export")

// Service loads baselines and serves playlist-scoped views of them.
type Service struct {
	repo  repository.LibraryRepository
	store ExportStore
	views *cache.ViewCache
	agg   *analytics.Aggregator
}

// NewService 创建曲库服务。store 与 views 可以为 nil
func NewService(repo repository.LibraryRepository, store ExportStore, views *cache.ViewCache, agg *analytics.Aggregator) *Service {
	if agg == nil {
		agg = analytics.NewAggregator(analytics.DefaultVocabulary)
	}
	return &Service{repo: repo, store: store, views: views, agg: agg}
}

// Aggregator returns the aggregator the service derives views with.
func (s *Service) Aggregator() *analytics.Aggregator {
	return s.agg
}

// Import decodes a raw analyzer document and stores it as a new baseline.
func (s *Service) Import(ctx context.Context, userID int64, name, source string, raw []byte) (*model.Library, error) {
	export, err := ingest.DecodeExport(bytes.NewReader(raw), s.agg)
	if err != nil {
		imports.WithLabelValues(source, "invalid").Inc()
		return nil, err
	}
	return s.Save(ctx, userID, name, source, export, raw)
}

// Save stores an already decoded export. The raw document is kept in the
// export store when one is configured.
func (s *Service) Save(ctx context.Context, userID int64, name, source string, export *ingest.Export, raw []byte) (*model.Library, error) {
	lib := &model.Library{
		ID:       uuid.New().String(),
		UserID:   userID,
		Name:     name,
		Source:   source,
		Baseline: model.Baseline{AnalysisResult: export.Result},
	}

	if s.store != nil && len(raw) > 0 {
		key, err := s.store.PutExport(ctx, userID, lib.ID, raw)
		if err != nil {
			// 原始文件只是存档，失败不影响加载
			logger.Warn("failed to archive export", logger.String("library", lib.ID), logger.ErrorField(err))
		} else {
			lib.ObjectKey = key
		}
	}

	if err := s.repo.Create(ctx, lib); err != nil {
		imports.WithLabelValues(source, "error").Inc()
		if lib.ObjectKey != "" {
			if rmErr := s.store.RemoveExport(ctx, lib.ObjectKey); rmErr != nil {
				logger.Warn("failed to remove orphaned export", logger.String("key", lib.ObjectKey), logger.ErrorField(rmErr))
			}
		}
		return nil, fmt.Errorf("failed to save library: %w", err)
	}

	imports.WithLabelValues(source, "ok").Inc()
	logger.Info("library loaded",
		logger.String("library", lib.ID),
		logger.Int64("user", userID),
		logger.String("source", source),
		logger.Int("tracks", lib.TrackCount),
		logger.Int("flagged", lib.FlaggedCount))
	if len(export.Mismatches) > 0 {
		logger.Warn("analyzer stats disagree with recomputation",
			logger.String("library", lib.ID),
			logger.Strings("mismatches", export.Mismatches))
	}
	return lib, nil
}

// Get 获取单个曲库
func (s *Service) Get(ctx context.Context, userID int64, id string) (*model.Library, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// Latest returns the most recent load of the user.
func (s *Service) Latest(ctx context.Context, userID int64) (*model.Library, error) {
	return s.repo.Latest(ctx, userID)
}

// History lists the user's loads, newest first.
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]*model.Library, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}

// RawExport returns the archived analyzer document of a library.
func (s *Service) RawExport(ctx context.Context, userID int64, id string) (*model.Library, []byte, error) {
	lib, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	if s.store == nil || lib.ObjectKey == "" {
		return lib, nil, ErrNoExport
	}
	data, err := s.store.GetExport(ctx, lib.ObjectKey)
	if err != nil {
		return lib, nil, err
	}
	return lib, data, nil
}

// Delete removes a library together with its cached views and raw export.
func (s *Service) Delete(ctx context.Context, userID int64, id string) error {
	lib, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	if err := s.views.Invalidate(ctx, id); err != nil {
		logger.Warn("failed to invalidate views", logger.String("library", id), logger.ErrorField(err))
	}
	if s.store != nil && lib.ObjectKey != "" {
		if err := s.store.RemoveExport(ctx, lib.ObjectKey); err != nil {
			logger.Warn("failed to remove export", logger.String("key", lib.ObjectKey), logger.ErrorField(err))
		}
	}
	return nil
}

// View derives the playlist-scoped view of a library. An empty selector means
// all playlists. Selectors that match no playlist yield an empty view with a
// suggestion when a similar playlist exists.
func (s *Service) View(ctx context.Context, lib *model.Library, selector string) analytics.View {
	if selector == "" {
		selector = analytics.AllPlaylists
	}
	baseline := lib.Baseline.AnalysisResult
	playlists := analytics.BuildPlaylistIndex(baseline.Tracks)

	if selector == analytics.AllPlaylists {
		viewsServed.WithLabelValues("baseline").Inc()
		return analytics.NewView(lib.ID, selector, playlists, baseline)
	}

	view := analytics.NewView(lib.ID, selector, playlists, s.derive(ctx, lib.ID, baseline, selector))
	if len(view.Result.Tracks) == 0 && !containsString(playlists, selector) {
		view.Suggestion = Suggest(selector, playlists)
	}
	return view
}

func (s *Service) derive(ctx context.Context, libraryID string, baseline model.AnalysisResult, selector string) model.FilteredAnalysisResult {
	key := s.viewKey(libraryID, selector)

	cached, ok, err := s.views.Get(ctx, key)
	if err != nil {
		logger.Warn("view cache lookup failed", logger.String("key", key), logger.ErrorField(err))
	}
	if ok {
		viewsServed.WithLabelValues("cache").Inc()
		return *cached
	}

	start := time.Now()
	result := s.agg.DeriveView(baseline, selector)
	deriveDuration.Observe(time.Since(start).Seconds())
	viewsServed.WithLabelValues("computed").Inc()

	if err := s.views.Set(ctx, key, &result); err != nil {
		logger.Warn("view cache store failed", logger.String("key", key), logger.ErrorField(err))
	}
	return result
}

func (s *Service) viewKey(libraryID, selector string) string {
	return cache.ViewKey(libraryID, s.agg.Vocabulary().Key(), selector)
}

// IsNotFound reports whether err means the library does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrLibraryNotFound)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package repository

import (
	"context"
	"errors"

	"crateaudit/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrLibraryNotFound is returned when no library matches the lookup.
var ErrLibraryNotFound = errors.New("library not found")

// LibraryRepository 曲库快照数据访问接口
type LibraryRepository interface {
	Create(ctx context.Context, lib *model.Library) error
	GetByID(ctx context.Context, userID int64, id string) (*model.Library, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]*model.Library, error)
	Latest(ctx context.Context, userID int64) (*model.Library, error)
	Delete(ctx context.Context, userID int64, id string) error
}

// gormLibraryRepository GORM 实现
type gormLibraryRepository struct {
	db *gorm.DB
}

// NewGormLibraryRepository 创建 GORM 曲库仓库
func NewGormLibraryRepository(db *gorm.DB) LibraryRepository {
	return &gormLibraryRepository{db: db}
}

// Create stores a new baseline. A missing ID is filled with a UUID and the
// track counters are derived from the baseline.
func (r *gormLibraryRepository) Create(ctx context.Context, lib *model.Library) error {
	if lib.ID == "" {
		lib.ID = uuid.New().String()
	}
	if lib.Source == "" {
		lib.Source = model.LibrarySourceUpload
	}
	lib.TrackCount = len(lib.Baseline.Tracks)
	lib.FlaggedCount = 0
	for i := range lib.Baseline.Tracks {
		if lib.Baseline.Tracks[i].Flagged() {
			lib.FlaggedCount++
		}
	}
	return r.db.WithContext(ctx).Create(lib).Error
}

// GetByID 根据ID获取曲库（包含基线数据）
func (r *gormLibraryRepository) GetByID(ctx context.Context, userID int64, id string) (*model.Library, error) {
	var lib model.Library
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&lib).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLibraryNotFound
		}
		return nil, err
	}
	return &lib, nil
}

// ListByUser returns the load history, newest first, without baselines.
func (r *gormLibraryRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*model.Library, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var libs []*model.Library
	err := r.db.WithContext(ctx).
		Omit("baseline").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&libs).Error
	return libs, err
}

// Latest 获取用户最近一次加载的曲库
func (r *gormLibraryRepository) Latest(ctx context.Context, userID int64) (*model.Library, error) {
	var lib model.Library
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&lib).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLibraryNotFound
		}
		return nil, err
	}
	return &lib, nil
}

// Delete 删除曲库
func (r *gormLibraryRepository) Delete(ctx context.Context, userID int64, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Library{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLibraryNotFound
	}
	return nil
}

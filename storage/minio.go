package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"crateaudit/config"
	"crateaudit/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BucketStats 存储桶统计信息
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// ExportStore keeps the raw export documents behind each library load.
type ExportStore struct {
	client *minio.Client
	bucket string
	region string
}

// NewExportStore 创建 MinIO 客户端
func NewExportStore(cfg *config.Config) (*ExportStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return &ExportStore{client: client, bucket: cfg.MinioBucket, region: cfg.MinioRegion}, nil
}

// ExportKey is the object key of a library's raw export.
func ExportKey(userID int64, libraryID string) string {
	return fmt.Sprintf("exports/%d/%s.json", userID, libraryID)
}

// Bucket returns the bucket name.
func (s *ExportStore) Bucket() string {
	return s.bucket
}

// EnsureBucket 检查存储桶，不存在则创建
func (s *ExportStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	logger.Info("bucket created", logger.String("bucket", s.bucket))
	return nil
}

// PutExport uploads a raw export and returns its object key.
func (s *ExportStore) PutExport(ctx context.Context, userID int64, libraryID string, data []byte) (string, error) {
	key := ExportKey(userID, libraryID)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload export %s: %w", key, err)
	}
	return key, nil
}

// GetExport 下载原始导出文件
func (s *ExportStore) GetExport(ctx context.Context, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get export %s: %w", key, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read export %s: %w", key, err)
	}
	return data, nil
}

// RemoveExport 删除原始导出文件
func (s *ExportStore) RemoveExport(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove export %s: %w", key, err)
	}
	return nil
}

// Stats walks the objects under prefix and sums their sizes.
func (s *ExportStore) Stats(ctx context.Context, prefix string) (*BucketStats, error) {
	stats := &BucketStats{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		stats.TotalObjects++
		stats.TotalSize += obj.Size
		if obj.LastModified.After(stats.LastModified) {
			stats.LastModified = obj.LastModified
		}
	}
	return stats, nil
}

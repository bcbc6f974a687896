package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crateaudit/logger"
	"crateaudit/model"

	"github.com/go-redis/redis/v8"
)

const (
	viewKey        = "view:%s:%s:%s" // libraryID, vocabulary key, selector
	viewPattern    = "view:%s:*"
	defaultViewTTL = 30 * time.Minute
)

// ViewCache caches derived playlist views keyed by (library, vocabulary, selector).
// The vocabulary part is IssueVocabulary.Key, so changing the issue types
// without bumping the version still misses the old entries.
// A nil client disables caching; every lookup is then a miss.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewViewCache 创建视图缓存
func NewViewCache(client *redis.Client, ttl time.Duration) *ViewCache {
	if ttl <= 0 {
		ttl = defaultViewTTL
	}
	return &ViewCache{client: client, ttl: ttl}
}

// ViewKey builds the cache key of one derived view.
func ViewKey(libraryID, vocabKey, selector string) string {
	return fmt.Sprintf(viewKey, libraryID, vocabKey, selector)
}

// Enabled reports whether a Redis client is attached.
func (c *ViewCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get returns the cached view, or false on a miss.
func (c *ViewCache) Get(ctx context.Context, key string) (*model.FilteredAnalysisResult, bool, error) {
	if !c.Enabled() {
		return nil, false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get view %s: %w", key, err)
	}

	var result model.FilteredAnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		// 缓存内容损坏时直接删除
		c.client.Del(ctx, key)
		return nil, false, fmt.Errorf("failed to unmarshal view %s: %w", key, err)
	}
	return &result, true, nil
}

// Set stores a derived view with the cache TTL.
func (c *ViewCache) Set(ctx context.Context, key string, result *model.FilteredAnalysisResult) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal view: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set view %s: %w", key, err)
	}
	return nil
}

// Invalidate drops every cached view of a library.
func (c *ViewCache) Invalidate(ctx context.Context, libraryID string) error {
	if !c.Enabled() {
		return nil
	}

	var keys []string
	iter := c.client.Scan(ctx, 0, fmt.Sprintf(viewPattern, libraryID), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan views of %s: %w", libraryID, err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete views of %s: %w", libraryID, err)
	}
	logger.Debug("view cache invalidated",
		logger.String("library", libraryID),
		logger.Int("keys", len(keys)))
	return nil
}

package storage

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/phambaophuc/image-watermark/internal/models"
	"github.com/redis/go-redis/v9"
)

const CacheKeyPrefix = "wm_cache:"

func (s *StorageService) GetFromCache(ctx context.Context, cacheKey string) ([]byte, error) {
	data, err := s.redisClient.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("cache get error: %w", err)
	}
	return data, nil
}

func (s *StorageService) SetCache(ctx context.Context, cacheKey string, data []byte) error {
	return s.redisClient.Set(ctx, cacheKey, data, s.cacheDuration).Err()
}

// GenerateCacheKey derives a stable key from the image source and the fully
// resolved options.
func GenerateCacheKey(source string, opts models.WatermarkOptions) string {
	combined := fmt.Sprintf("%s|text=%s|anchor=%s|size=%.2f|opacity=%.3f|padding=%.2f",
		source, opts.Text, opts.Anchor, opts.FontSize, opts.Opacity, opts.Padding)

	hash := sha256.Sum256([]byte(combined))
	return fmt.Sprintf("%s%x", CacheKeyPrefix, hash)
}

func (s *StorageService) GetCacheStats(ctx context.Context) (map[string]interface{}, error) {
	pipeline := s.redisClient.Pipeline()

	infoCmd := pipeline.Info(ctx, "memory")
	dbSizeCmd := pipeline.DBSize(ctx)

	if _, err := pipeline.Exec(ctx); err != nil {
		return nil, fmt.Errorf("pipeline error: %w", err)
	}

	return map[string]interface{}{
		"db_keys": dbSizeCmd.Val(),
		"info":    infoCmd.Val(),
	}, nil
}

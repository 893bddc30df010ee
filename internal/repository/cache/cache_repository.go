package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/residential-history/internal/domain"
	"github.com/residential-history/internal/domain/repository"
	"go.uber.org/zap"
)

const datasetKeyPrefix = "resmap:dataset:"

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

// GetDataset получает снимок исходных таблиц из кеша
func (r *cacheRepository) GetDataset(ctx context.Context, source string) (*domain.Dataset, error) {
	data, err := r.Get(ctx, DatasetKey(source))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var ds domain.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		r.logger.Error("Failed to unmarshal dataset from cache", zap.String("source", source), zap.Error(err))
		return nil, fmt.Errorf("unmarshal dataset: %w", err)
	}

	return &ds, nil
}

// SetDataset сохраняет снимок исходных таблиц в кеше. ttl 0 - без истечения.
func (r *cacheRepository) SetDataset(ctx context.Context, source string, dataset *domain.Dataset, ttl time.Duration) error {
	data, err := json.Marshal(dataset)
	if err != nil {
		r.logger.Error("Failed to marshal dataset", zap.Error(err))
		return fmt.Errorf("marshal dataset: %w", err)
	}

	return r.Set(ctx, DatasetKey(source), data, ttl)
}

func (r *cacheRepository) DeleteDataset(ctx context.Context, source string) error {
	return r.Delete(ctx, DatasetKey(source))
}

// DatasetKey returns the cache key of a source's snapshot.
func DatasetKey(source string) string {
	return datasetKeyPrefix + source
}

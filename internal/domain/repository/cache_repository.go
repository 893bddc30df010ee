package repository

import (
	"context"
	"time"

	"github.com/residential-history/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу, nil при промахе
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// GetDataset получает снимок исходных таблиц, nil при промахе
	GetDataset(ctx context.Context, source string) (*domain.Dataset, error)

	// SetDataset сохраняет снимок исходных таблиц
	SetDataset(ctx context.Context, source string, dataset *domain.Dataset, ttl time.Duration) error

	// DeleteDataset удаляет снимок исходных таблиц
	DeleteDataset(ctx context.Context, source string) error
}

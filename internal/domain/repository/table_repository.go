package repository

import (
	"context"

	"github.com/residential-history/internal/domain"
)

// TableSource загружает таблицу координат и таблицу траекторий
type TableSource interface {
	// Name идентифицирует источник в логах и ключах кеша
	Name() string

	// Load читает обе таблицы. Ошибки: DATA_UNAVAILABLE, MALFORMED_INPUT
	Load(ctx context.Context) (*domain.Dataset, error)
}

// SnapshotKeyer - источник, умеющий назвать версию своих данных.
// Ключ меняется вместе с данными, так что устаревший снимок не находится.
type SnapshotKeyer interface {
	SnapshotKey() (string, error)
}

// TableWriter сохраняет исходные таблицы (используется командой импорта)
type TableWriter interface {
	Save(ctx context.Context, dataset *domain.Dataset) error
}

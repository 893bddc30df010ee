package worker

import (
	"context"
	"time"

	"github.com/residential-history/internal/domain"
	"go.uber.org/zap"
)

// reloadTimeout ограничивает одно перечитывание источника
const reloadTimeout = 2 * time.Minute

// Reloader перечитывает исходные таблицы и заменяет мемоизированную копию
type Reloader interface {
	Reload(ctx context.Context) (*domain.Dataset, error)
}

// DatasetReloadWorker периодически перечитывает исходные таблицы.
// Ошибка перечитывания не останавливает воркер: продолжают отдаваться прежние таблицы.
type DatasetReloadWorker struct {
	*BaseWorker
	reloader Reloader
	interval time.Duration
}

// NewDatasetReloadWorker создает воркер перечитывания с заданным интервалом
func NewDatasetReloadWorker(reloader Reloader, interval time.Duration, logger *zap.Logger) *DatasetReloadWorker {
	return &DatasetReloadWorker{
		BaseWorker: NewBaseWorker("dataset-reload", logger),
		reloader:   reloader,
		interval:   interval,
	}
}

// Start запускает цикл перечитывания
func (w *DatasetReloadWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting dataset reload worker", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case <-ticker.C:
			w.reload(ctx)
		}
	}
}

func (w *DatasetReloadWorker) reload(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, reloadTimeout)
	defer cancel()

	start := time.Now()
	ds, err := w.reloader.Reload(ctx)
	if err != nil {
		w.Logger().Error("Scheduled reload failed, keeping previous tables", zap.Error(err))
		return
	}

	w.Logger().Info("Scheduled reload completed",
		zap.Int("coordinate_rows", len(ds.Coordinates.Rows)),
		zap.Int("trajectory_rows", len(ds.Trajectory.Rows)),
		zap.Duration("took", time.Since(start)),
	)
}

package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/residential-history/internal/domain"
	"github.com/residential-history/internal/domain/repository"
	"github.com/residential-history/internal/pkg/errors"
	"go.uber.org/zap"
)

const datasetMemoKey = "dataset"

// Load results reported to the metrics recorder.
const (
	LoadResultSource   = "source"
	LoadResultSnapshot = "snapshot"
	LoadResultError    = "error"
)

// MetricsRecorder принимает измерения загрузки данных и конвейера
type MetricsRecorder interface {
	ObserveDatasetLoad(source, result string, took time.Duration)
	ObservePipeline(stats domain.PipelineStats, took time.Duration, err error)
}

type noopRecorder struct{}

func (noopRecorder) ObserveDatasetLoad(string, string, time.Duration) {}
func (noopRecorder) ObservePipeline(domain.PipelineStats, time.Duration, error) {}

// DatasetOptions управляет мемоизацией загрузки
type DatasetOptions struct {
	Memoize     bool
	SnapshotTTL time.Duration
	Recorder    MetricsRecorder
}

// DatasetUseCase отдаёт загруженные исходные таблицы.
// С мемоизацией таблицы загружаются один раз и дальше только читаются;
// без неё каждый вызов читает источник заново.
type DatasetUseCase struct {
	source      repository.TableSource
	cacheRepo   repository.CacheRepository
	memo        *cache.Cache
	mu          sync.Mutex
	snapshotTTL time.Duration
	recorder    MetricsRecorder
	logger      *zap.Logger
}

// NewDatasetUseCase создает новый экземпляр DatasetUseCase. cacheRepo may be nil.
func NewDatasetUseCase(
	source repository.TableSource,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	opts DatasetOptions,
) *DatasetUseCase {
	uc := &DatasetUseCase{
		source:      source,
		cacheRepo:   cacheRepo,
		snapshotTTL: opts.SnapshotTTL,
		recorder:    opts.Recorder,
		logger:      logger,
	}
	if uc.recorder == nil {
		uc.recorder = noopRecorder{}
	}
	if opts.Memoize {
		// no expiry and no janitor goroutine: entries live until Reload
		uc.memo = cache.New(cache.NoExpiration, 0)
	}
	return uc
}

// Memoized reports whether the load step is memoized.
func (uc *DatasetUseCase) Memoized() bool {
	return uc.memo != nil
}

// Dataset возвращает исходные таблицы, используя мемоизированный результат когда возможно
func (uc *DatasetUseCase) Dataset(ctx context.Context) (*domain.Dataset, error) {
	if uc.memo == nil {
		return uc.loadFromSource(ctx)
	}

	if ds, ok := uc.memoized(); ok {
		return ds, nil
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	// another caller may have populated the memo while we waited
	if ds, ok := uc.memoized(); ok {
		return ds, nil
	}

	if ds := uc.fromSnapshot(ctx); ds != nil {
		uc.memo.Set(datasetMemoKey, ds, cache.NoExpiration)
		return ds, nil
	}

	ds, err := uc.loadFromSource(ctx)
	if err != nil {
		return nil, err
	}

	uc.memo.Set(datasetMemoKey, ds, cache.NoExpiration)
	uc.storeSnapshot(ctx, ds)

	return ds, nil
}

// Warmup всегда читает источник, минуя снимок в Redis: отсутствующие или
// битые файлы должны остановить старт. Результат мемоизируется и сохраняется как снимок.
func (uc *DatasetUseCase) Warmup(ctx context.Context) (*domain.Dataset, error) {
	if uc.memo == nil {
		return uc.loadFromSource(ctx)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	ds, err := uc.loadFromSource(ctx)
	if err != nil {
		return nil, err
	}

	uc.memo.Set(datasetMemoKey, ds, cache.NoExpiration)
	uc.storeSnapshot(ctx, ds)

	return ds, nil
}

// Reload принудительно перечитывает источник и заменяет мемоизированные таблицы
func (uc *DatasetUseCase) Reload(ctx context.Context) (*domain.Dataset, error) {
	if uc.memo == nil {
		return nil, errors.ErrMemoDisabled
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.logger.Info("Reloading source tables", zap.String("source", uc.source.Name()))

	ds, err := uc.loadFromSource(ctx)
	if err != nil {
		// keep serving the previous tables
		return nil, fmt.Errorf("reload dataset: %w", err)
	}

	uc.memo.Set(datasetMemoKey, ds, cache.NoExpiration)
	if uc.cacheRepo != nil {
		if key, ok := uc.snapshotKey(); ok {
			if err := uc.cacheRepo.DeleteDataset(ctx, key); err != nil {
				uc.logger.Warn("Failed to drop dataset snapshot", zap.Error(err))
			}
		}
	}
	uc.storeSnapshot(ctx, ds)

	return ds, nil
}

func (uc *DatasetUseCase) memoized() (*domain.Dataset, bool) {
	v, ok := uc.memo.Get(datasetMemoKey)
	if !ok {
		return nil, false
	}
	ds, ok := v.(*domain.Dataset)
	return ds, ok
}

func (uc *DatasetUseCase) loadFromSource(ctx context.Context) (*domain.Dataset, error) {
	start := time.Now()
	ds, err := uc.source.Load(ctx)
	if err != nil {
		uc.recorder.ObserveDatasetLoad(uc.source.Name(), LoadResultError, time.Since(start))
		uc.logger.Error("Failed to load source tables",
			zap.String("source", uc.source.Name()),
			zap.Error(err))
		return nil, err
	}
	uc.recorder.ObserveDatasetLoad(uc.source.Name(), LoadResultSource, time.Since(start))
	return ds, nil
}

func (uc *DatasetUseCase) fromSnapshot(ctx context.Context) *domain.Dataset {
	if uc.cacheRepo == nil {
		return nil
	}

	key, ok := uc.snapshotKey()
	if !ok {
		return nil
	}

	start := time.Now()
	ds, err := uc.cacheRepo.GetDataset(ctx, key)
	if err != nil {
		uc.logger.Warn("Failed to get dataset snapshot from cache", zap.Error(err))
		return nil
	}
	if ds == nil {
		return nil
	}

	uc.recorder.ObserveDatasetLoad(uc.source.Name(), LoadResultSnapshot, time.Since(start))
	uc.logger.Debug("Source tables restored from snapshot", zap.String("source", uc.source.Name()))
	return ds
}

func (uc *DatasetUseCase) storeSnapshot(ctx context.Context, ds *domain.Dataset) {
	if uc.cacheRepo == nil {
		return
	}
	key, ok := uc.snapshotKey()
	if !ok {
		return
	}
	if err := uc.cacheRepo.SetDataset(ctx, key, ds, uc.snapshotTTL); err != nil {
		// Не возвращаем ошибку, т.к. данные уже получены
		uc.logger.Warn("Failed to cache dataset snapshot", zap.Error(err))
	}
}

// snapshotKey falls back to the source name for sources without a version key.
func (uc *DatasetUseCase) snapshotKey() (string, bool) {
	keyer, ok := uc.source.(repository.SnapshotKeyer)
	if !ok {
		return uc.source.Name(), true
	}
	key, err := keyer.SnapshotKey()
	if err != nil {
		uc.logger.Warn("Source version unknown, snapshot skipped",
			zap.String("source", uc.source.Name()),
			zap.Error(err))
		return "", false
	}
	return key, true
}

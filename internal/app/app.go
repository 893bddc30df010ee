// Package app собирает зависимости сервиса: источник таблиц, кеш, метрики и use cases.
// Используется и HTTP сервером, и CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/residential-history/internal/config"
	"github.com/residential-history/internal/domain/repository"
	"github.com/residential-history/internal/pkg/metrics"
	"github.com/residential-history/internal/repository/cache"
	"github.com/residential-history/internal/repository/file"
	"github.com/residential-history/internal/repository/postgres"
	"github.com/residential-history/internal/usecase"
	"go.uber.org/zap"
)

// Dependency health states
const (
	StatusUp       = "up"
	StatusDown     = "down"
	StatusDisabled = "disabled"
)

type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Source   repository.TableSource
	Datasets *usecase.DatasetUseCase
	Maps     *usecase.MapUseCase

	db    *postgres.DB
	redis *cache.Redis
}

// New подключает источник данных и (опционально) Redis и создаёт use cases.
// Недоступный Redis не фатален: сервис работает без снимков.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: m,
	}

	source, db, err := NewTableSource(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Source = source
	a.db = db

	var cacheRepo repository.CacheRepository
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis unavailable, dataset snapshots disabled", zap.Error(err))
		} else {
			a.redis = redisClient
			cacheRepo = cache.NewCacheRepository(redisClient)
		}
	}

	a.Datasets = usecase.NewDatasetUseCase(source, cacheRepo, logger, usecase.DatasetOptions{
		Memoize:     cfg.Map.MemoizeLoad,
		SnapshotTTL: cfg.Cache.SnapshotTTL,
		Recorder:    m,
	})

	a.Maps = usecase.NewMapUseCase(a.Datasets, usecase.MapOptions{
		BoundingBox: cfg.Map.BoundingBox,
		DefaultYear: cfg.Map.DefaultYear,
		Render: usecase.RenderOptions{
			MarkerRadius: cfg.Map.MarkerRadius,
			ShowLegend:   cfg.Map.ShowLegend,
		},
	}, m, logger)

	logger.Info("Application initialized",
		zap.String("source", source.Name()),
		zap.Bool("memoize_load", cfg.Map.MemoizeLoad),
		zap.Bool("snapshots", cacheRepo != nil),
	)

	return a, nil
}

// NewTableSource создаёт источник исходных таблиц по DATA_SOURCE.
// Для postgres также возвращает соединение, которое нужно закрыть.
func NewTableSource(cfg *config.Config, logger *zap.Logger) (repository.TableSource, *postgres.DB, error) {
	switch cfg.Data.Source {
	case config.SourceFile:
		return file.NewSource(cfg.Data.CoordPath, cfg.Data.TrajectoryPath, cfg.Data.TrajectorySheet, logger), nil, nil
	case config.SourcePostgres:
		db, err := OpenDatabase(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewTableRepository(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
}

// OpenDatabase подключается к PostgreSQL и применяет миграции
func OpenDatabase(cfg *config.Config, logger *zap.Logger) (*postgres.DB, error) {
	db, err := postgres.New(&cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// Warmup загружает таблицы из источника при старте, чтобы отсутствующие файлы обнаружились сразу
func (a *App) Warmup(ctx context.Context) error {
	ds, err := a.Datasets.Warmup(ctx)
	if err != nil {
		return err
	}
	summary := ds.Summary()
	a.Logger.Info("Source tables ready",
		zap.String("source", summary.Source),
		zap.Int("coordinate_rows", summary.CoordinateRows),
		zap.Int("trajectory_rows", summary.TrajectoryRows),
		zap.Int("trajectory_years", summary.TrajectoryYears),
	)
	return nil
}

// Health проверяет внешние зависимости
func (a *App) Health(ctx context.Context) map[string]string {
	deps := map[string]string{
		"postgres": StatusDisabled,
		"redis":    StatusDisabled,
	}
	if a.db != nil {
		deps["postgres"] = status(a.db.Health(ctx))
	}
	if a.redis != nil {
		deps["redis"] = status(a.redis.Health(ctx))
	}
	return deps
}

func (a *App) Close() error {
	var errs []error
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close postgres: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

func status(err error) string {
	if err != nil {
		return StatusDown
	}
	return StatusUp
}

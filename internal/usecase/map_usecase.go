package usecase

import (
	"context"
	"time"

	"github.com/residential-history/internal/domain"
	"github.com/residential-history/internal/pkg/utils"
	"go.uber.org/zap"
)

// MapOptions - неизменяемые параметры карты, задаются при старте
type MapOptions struct {
	BoundingBox domain.BoundingBox
	DefaultYear int
	Render      RenderOptions
}

// MapUseCase прогоняет полный конвейер на каждый выбор года:
// загрузка (или мемоизированные таблицы) -> точки -> представление карты.
type MapUseCase struct {
	datasets *DatasetUseCase
	opts     MapOptions
	recorder MetricsRecorder
	logger   *zap.Logger
}

func NewMapUseCase(
	datasets *DatasetUseCase,
	opts MapOptions,
	recorder MetricsRecorder,
	logger *zap.Logger,
) *MapUseCase {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if opts.DefaultYear == 0 {
		opts.DefaultYear = domain.DefaultYear
	}
	return &MapUseCase{
		datasets: datasets,
		opts:     opts,
		recorder: recorder,
		logger:   logger,
	}
}

func (uc *MapUseCase) DefaultYear() int {
	return uc.opts.DefaultYear
}

func (uc *MapUseCase) Years() domain.YearRange {
	return domain.SupportedYears
}

func (uc *MapUseCase) BoundingBox() domain.BoundingBox {
	return uc.opts.BoundingBox
}

// GetPoints возвращает точки за год
func (uc *MapUseCase) GetPoints(ctx context.Context, year int) ([]domain.GeoPoint, error) {
	points, _, _, err := uc.buildPoints(ctx, year)
	return points, err
}

// GetMap возвращает представление карты за год. Пустой результат - валидная пустая карта.
func (uc *MapUseCase) GetMap(ctx context.Context, year int) (*domain.MapView, error) {
	points, _, _, err := uc.buildPoints(ctx, year)
	if err != nil {
		return nil, err
	}
	return Render(points, uc.opts.BoundingBox, year, uc.opts.Render), nil
}

// GetStats возвращает количество точек по категориям и статистику конвейера за год
func (uc *MapUseCase) GetStats(ctx context.Context, year int) (*domain.YearStats, error) {
	points, stats, ds, err := uc.buildPoints(ctx, year)
	if err != nil {
		return nil, err
	}

	byCategory := map[string]int{
		domain.CategoryHouse.Label():     0,
		domain.CategoryApartment.Label(): 0,
	}
	for _, p := range points {
		byCategory[p.Category.Label()]++
	}

	return &domain.YearStats{
		Year:       year,
		Total:      len(points),
		ByCategory: byCategory,
		Pipeline:   stats,
		Coverage:   utils.Coverage(uc.opts.BoundingBox),
		Dataset:    ds.Summary(),
	}, nil
}

// Reload перечитывает источник (только при включённой мемоизации)
func (uc *MapUseCase) Reload(ctx context.Context) (*domain.DatasetSummary, error) {
	ds, err := uc.datasets.Reload(ctx)
	if err != nil {
		return nil, err
	}
	summary := ds.Summary()
	return &summary, nil
}

func (uc *MapUseCase) buildPoints(ctx context.Context, year int) ([]domain.GeoPoint, domain.PipelineStats, *domain.Dataset, error) {
	ds, err := uc.datasets.Dataset(ctx)
	if err != nil {
		return nil, domain.PipelineStats{Year: year}, nil, err
	}

	start := time.Now()
	points, stats, err := BuildPoints(year, ds, uc.opts.BoundingBox)
	took := time.Since(start)
	uc.recorder.ObservePipeline(stats, took, err)

	if err != nil {
		uc.logger.Warn("Pipeline rejected request", zap.Int("year", year), zap.Error(err))
		return nil, stats, ds, err
	}

	uc.logger.Debug("Points built",
		zap.Int("year", year),
		zap.Int("candidates", stats.Candidates),
		zap.Int("joined", stats.Joined),
		zap.Int("points", stats.Points),
		zap.Duration("took", took),
	)

	return points, stats, ds, nil
}

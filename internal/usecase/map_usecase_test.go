package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/residential-history/internal/domain"
	apperrors "github.com/residential-history/internal/pkg/errors"
	"github.com/residential-history/internal/usecase"
)

func mixedDataset() *domain.Dataset {
	return newDataset(
		coordCols1990,
		[]domain.CoordinateRow{
			coordRow("A1", map[string]*float64{"1990_lat": f64(44.40), "1990_long": f64(26.00)}),
			coordRow("B2", map[string]*float64{"1990_lat": f64(44.45), "1990_long": f64(26.10)}),
			coordRow("C3", map[string]*float64{"1990_lat": f64(44.50), "1990_long": f64(26.20)}),
			coordRow("D4", map[string]*float64{"1990_lat": f64(45.50), "1990_long": f64(26.20)}),
		},
		[]string{"1990"},
		[]domain.TrajectoryRow{
			{ID: "A1", Cells: map[string]string{"1990": "1"}},
			{ID: "B2", Cells: map[string]string{"1990": "2"}},
			{ID: "C3", Cells: map[string]string{"1990": "2"}},
			{ID: "D4", Cells: map[string]string{"1990": "1"}},
		},
	)
}

func newMapUseCase(t *testing.T, ds *domain.Dataset, recorder usecase.MetricsRecorder) (*usecase.MapUseCase, *MockTableSource) {
	t.Helper()

	source := &MockTableSource{}
	source.On("Load", mock.Anything).Return(ds, nil)

	datasets := usecase.NewDatasetUseCase(source, nil, zap.NewNop(), usecase.DatasetOptions{
		Memoize:  true,
		Recorder: recorder,
	})
	uc := usecase.NewMapUseCase(datasets, usecase.MapOptions{
		BoundingBox: domain.BucharestBBox,
		Render:      usecase.RenderOptions{MarkerRadius: 3, ShowLegend: true},
	}, recorder, zap.NewNop())
	return uc, source
}

func TestMapUseCase_Defaults(t *testing.T) {
	uc, _ := newMapUseCase(t, mixedDataset(), nil)

	assert.Equal(t, domain.DefaultYear, uc.DefaultYear())
	assert.Equal(t, domain.SupportedYears, uc.Years())
	assert.Equal(t, domain.BucharestBBox, uc.BoundingBox())
}

func TestMapUseCase_GetMap(t *testing.T) {
	ctx := context.Background()
	recorder := &recordingRecorder{}
	uc, source := newMapUseCase(t, mixedDataset(), recorder)

	view, err := uc.GetMap(ctx, 1990)
	require.NoError(t, err)

	require.Len(t, view.Markers, 3, "point outside the bounding box is dropped")
	assert.Equal(t, "green", view.Markers[0].Color)
	assert.Equal(t, "blue", view.Markers[1].Color)
	assert.Equal(t, "blue", view.Markers[2].Color)
	require.NotNil(t, view.Legend)
	assert.Equal(t, "Legend - Year 1990", view.Legend.Title)

	// a year without columns gives a valid empty map
	view, err = uc.GetMap(ctx, 2001)
	require.NoError(t, err)
	assert.Empty(t, view.Markers)
	assert.Equal(t, 2001, view.Year)

	source.AssertNumberOfCalls(t, "Load", 1)
	require.Len(t, recorder.pipelines, 2)
	assert.Equal(t, 3, recorder.pipelines[0].Points)
	assert.Equal(t, 1, recorder.pipelines[0].DroppedOutsideBBox)
}

func TestMapUseCase_GetPoints(t *testing.T) {
	uc, _ := newMapUseCase(t, mixedDataset(), nil)

	points, err := uc.GetPoints(context.Background(), 1990)
	require.NoError(t, err)

	ids := make([]string, 0, len(points))
	for _, p := range points {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"A1", "B2", "C3"}, ids)
}

func TestMapUseCase_GetStats(t *testing.T) {
	uc, _ := newMapUseCase(t, mixedDataset(), nil)

	stats, err := uc.GetStats(context.Background(), 1990)
	require.NoError(t, err)

	assert.Equal(t, 1990, stats.Year)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, map[string]int{"House": 1, "Apartment": 2}, stats.ByCategory)
	assert.Equal(t, 4, stats.Pipeline.Candidates)
	assert.Equal(t, 4, stats.Pipeline.Joined)
	assert.Equal(t, 1, stats.Pipeline.DroppedOutsideBBox)
	assert.Equal(t, 4, stats.Dataset.CoordinateRows)
	assert.Greater(t, stats.Coverage.AreaSqKm, 0.0)

	stats, err = uc.GetStats(context.Background(), 2001)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, map[string]int{"House": 0, "Apartment": 0}, stats.ByCategory)
}

func TestMapUseCase_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("year out of range", func(t *testing.T) {
		recorder := &recordingRecorder{}
		uc, _ := newMapUseCase(t, mixedDataset(), recorder)

		_, err := uc.GetMap(ctx, 1988)
		assert.ErrorIs(t, err, apperrors.ErrYearOutOfRange)

		_, err = uc.GetStats(ctx, 2018)
		assert.ErrorIs(t, err, apperrors.ErrYearOutOfRange)

		require.Len(t, recorder.errs, 2)
		assert.Error(t, recorder.errs[0])
	})

	t.Run("data unavailable passes through", func(t *testing.T) {
		source := &MockTableSource{}
		source.On("Load", mock.Anything).Return(nil, apperrors.ErrDataUnavailable)

		datasets := usecase.NewDatasetUseCase(source, nil, zap.NewNop(), usecase.DatasetOptions{Memoize: true})
		uc := usecase.NewMapUseCase(datasets, usecase.MapOptions{BoundingBox: domain.BucharestBBox}, nil, zap.NewNop())

		_, err := uc.GetMap(ctx, 2000)
		assert.ErrorIs(t, err, apperrors.ErrDataUnavailable)

		_, err = uc.GetPoints(ctx, 2000)
		assert.ErrorIs(t, err, apperrors.ErrDataUnavailable)
	})
}

func TestMapUseCase_Reload(t *testing.T) {
	uc, source := newMapUseCase(t, mixedDataset(), nil)

	summary, err := uc.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.CoordinateRows)
	assert.Equal(t, 4, summary.TrajectoryRows)
	source.AssertNumberOfCalls(t, "Load", 1)
}

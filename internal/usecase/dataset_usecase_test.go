package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/residential-history/internal/domain"
	apperrors "github.com/residential-history/internal/pkg/errors"
	"github.com/residential-history/internal/usecase"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// MockTableSource is a mock of TableSource
type MockTableSource struct {
	mock.Mock
}

func (m *MockTableSource) Name() string {
	return "mock"
}

func (m *MockTableSource) Load(ctx context.Context) (*domain.Dataset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) GetDataset(ctx context.Context, source string) (*domain.Dataset, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}

func (m *MockCacheRepository) SetDataset(ctx context.Context, source string, dataset *domain.Dataset, ttl time.Duration) error {
	args := m.Called(ctx, source, dataset, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) DeleteDataset(ctx context.Context, source string) error {
	args := m.Called(ctx, source)
	return args.Error(0)
}

// recordingRecorder keeps every observation for assertions.
type recordingRecorder struct {
	mu        sync.Mutex
	loads     []string
	pipelines []domain.PipelineStats
	errs      []error
}

func (r *recordingRecorder) ObserveDatasetLoad(_ string, result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads = append(r.loads, result)
}

func (r *recordingRecorder) ObservePipeline(stats domain.PipelineStats, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipelines = append(r.pipelines, stats)
	r.errs = append(r.errs, err)
}

func TestDatasetUseCase_MemoizedLoadsOnce(t *testing.T) {
	ctx := context.Background()
	ds := singleEntity(f64(44.40), f64(26.00), "1")

	source := &MockTableSource{}
	source.On("Load", mock.Anything).Return(ds, nil).Once()

	recorder := &recordingRecorder{}
	uc := usecase.NewDatasetUseCase(source, nil, zap.NewNop(), usecase.DatasetOptions{
		Memoize:  true,
		Recorder: recorder,
	})
	assert.True(t, uc.Memoized())

	var wg sync.WaitGroup
	results := make([]*domain.Dataset, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := uc.Dataset(ctx)
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Same(t, ds, got)
	}
	source.AssertNumberOfCalls(t, "Load", 1)
	assert.Equal(t, []string{usecase.LoadResultSource}, recorder.loads)
}

func TestDatasetUseCase_WithoutMemoLoadsEveryTime(t *testing.T) {
	ctx := context.Background()
	ds := singleEntity(f64(44.40), f64(26.00), "1")

	source := &MockTableSource{}
	source.On("Load", mock.Anything).Return(ds, nil)

	uc := usecase.NewDatasetUseCase(source, nil, zap.NewNop(), usecase.DatasetOptions{})
	assert.False(t, uc.Memoized())

	for i := 0; i < 3; i++ {
		_, err := uc.Dataset(ctx)
		require.NoError(t, err)
	}
	source.AssertNumberOfCalls(t, "Load", 3)

	_, err := uc.Reload(ctx)
	assert.ErrorIs(t, err, apperrors.ErrMemoDisabled)
}

func TestDatasetUseCase_FailedLoadIsNotMemoized(t *testing.T) {
	ctx := context.Background()
	ds := singleEntity(f64(44.40), f64(26.00), "1")
	loadErr := apperrors.ErrDataUnavailable.Wrap(errors.New("disk gone"))

	source := &MockTableSource{}
	source.On("Load", mock.Anything).Return(nil, loadErr).Once()
	source.On("Load", mock.Anything).Return(ds, nil).Once()

	uc := usecase.NewDatasetUseCase(source, nil, zap.NewNop(), usecase.DatasetOptions{Memoize: true})

	_, err := uc.Dataset(ctx)
	assert.ErrorIs(t, err, apperrors.ErrDataUnavailable)

	got, err := uc.Dataset(ctx)
	require.NoError(t, err)
	assert.Same(t, ds, got)
	source.AssertExpectations(t)
}

func TestDatasetUseCase_Snapshot(t *testing.T) {
	ctx := context.Background()
	ds := singleEntity(f64(44.40), f64(26.00), "1")

	t.Run("restores from snapshot without touching the source", func(t *testing.T) {
		source := &MockTableSource{}
		cacheRepo := &MockCacheRepository{}
		cacheRepo.On("GetDataset", mock.Anything, "mock").Return(ds, nil).Once()

		recorder := &recordingRecorder{}
		uc := usecase.NewDatasetUseCase(source, cacheRepo, zap.NewNop(), usecase.DatasetOptions{
			Memoize:  true,
			Recorder: recorder,
		})

		got, err := uc.Dataset(ctx)
		require.NoError(t, err)
		assert.Same(t, ds, got)

		// second call is served by the in-process memo
		_, err = uc.Dataset(ctx)
		require.NoError(t, err)

		source.AssertNotCalled(t, "Load", mock.Anything)
		cacheRepo.AssertExpectations(t)
		assert.Equal(t, []string{usecase.LoadResultSnapshot}, recorder.loads)
	})

	t.Run("stores snapshot after a source load", func(t *testing.T) {
		source := &MockTableSource{}
		source.On("Load", mock.Anything).Return(ds, nil).Once()

		cacheRepo := &MockCacheRepository{}
		cacheRepo.On("GetDataset", mock.Anything, "mock").Return(nil, nil).Once()
		cacheRepo.On("SetDataset", mock.Anything, "mock", ds, time.Hour).Return(nil).Once()

		uc := usecase.NewDatasetUseCase(source, cacheRepo, zap.NewNop(), usecase.DatasetOptions{
			Memoize:     true,
			SnapshotTTL: time.Hour,
		})

		got, err := uc.Dataset(ctx)
		require.NoError(t, err)
		assert.Same(t, ds, got)
		source.AssertExpectations(t)
		cacheRepo.AssertExpectations(t)
	})

	t.Run("cache failures fall back to the source", func(t *testing.T) {
		source := &MockTableSource{}
		source.On("Load", mock.Anything).Return(ds, nil).Once()

		cacheRepo := &MockCacheRepository{}
		cacheRepo.On("GetDataset", mock.Anything, "mock").Return(nil, errors.New("redis down")).Once()
		cacheRepo.On("SetDataset", mock.Anything, "mock", ds, time.Duration(0)).Return(errors.New("redis down")).Once()

		uc := usecase.NewDatasetUseCase(source, cacheRepo, zap.NewNop(), usecase.DatasetOptions{Memoize: true})

		got, err := uc.Dataset(ctx)
		require.NoError(t, err)
		assert.Same(t, ds, got)
	})
}

func TestDatasetUseCase_Reload(t *testing.T) {
	ctx := context.Background()
	first := singleEntity(f64(44.40), f64(26.00), "1")
	second := singleEntity(f64(44.41), f64(26.01), "2")

	source := &MockTableSource{}
	source.On("Load", mock.Anything).Return(first, nil).Once()
	source.On("Load", mock.Anything).Return(second, nil).Once()
	source.On("Load", mock.Anything).Return(nil, apperrors.ErrDataUnavailable).Once()

	uc := usecase.NewDatasetUseCase(source, nil, zap.NewNop(), usecase.DatasetOptions{Memoize: true})

	got, err := uc.Dataset(ctx)
	require.NoError(t, err)
	assert.Same(t, first, got)

	got, err = uc.Reload(ctx)
	require.NoError(t, err)
	assert.Same(t, second, got)

	got, err = uc.Dataset(ctx)
	require.NoError(t, err)
	assert.Same(t, second, got)

	// a failed reload keeps the previous tables
	_, err = uc.Reload(ctx)
	assert.ErrorIs(t, err, apperrors.ErrDataUnavailable)

	got, err = uc.Dataset(ctx)
	require.NoError(t, err)
	assert.Same(t, second, got)
}

// keyedTableSource names the version of its data.
type keyedTableSource struct {
	MockTableSource
	key    string
	keyErr error
}

func (s *keyedTableSource) SnapshotKey() (string, error) {
	return s.key, s.keyErr
}

func TestDatasetUseCase_WarmupReadsSource(t *testing.T) {
	ctx := context.Background()
	ds := singleEntity(f64(44.40), f64(26.00), "1")

	t.Run("source failure is returned even with a snapshot", func(t *testing.T) {
		source := &MockTableSource{}
		source.On("Load", mock.Anything).Return(nil, apperrors.ErrDataUnavailable).Once()

		cacheRepo := &MockCacheRepository{}
		cacheRepo.On("GetDataset", mock.Anything, "mock").Return(ds, nil).Maybe()

		uc := usecase.NewDatasetUseCase(source, cacheRepo, zap.NewNop(), usecase.DatasetOptions{Memoize: true})

		_, err := uc.Warmup(ctx)
		assert.ErrorIs(t, err, apperrors.ErrDataUnavailable)
		cacheRepo.AssertNotCalled(t, "GetDataset", mock.Anything, mock.Anything)
	})

	t.Run("memoizes and stores the snapshot", func(t *testing.T) {
		source := &MockTableSource{}
		source.On("Load", mock.Anything).Return(ds, nil).Once()

		cacheRepo := &MockCacheRepository{}
		cacheRepo.On("SetDataset", mock.Anything, "mock", ds, time.Duration(0)).Return(nil).Once()

		uc := usecase.NewDatasetUseCase(source, cacheRepo, zap.NewNop(), usecase.DatasetOptions{Memoize: true})

		got, err := uc.Warmup(ctx)
		require.NoError(t, err)
		assert.Same(t, ds, got)

		got, err = uc.Dataset(ctx)
		require.NoError(t, err)
		assert.Same(t, ds, got)

		source.AssertExpectations(t)
		cacheRepo.AssertExpectations(t)
	})
}

func TestDatasetUseCase_SnapshotKeyFollowsSourceVersion(t *testing.T) {
	ctx := context.Background()
	ds := singleEntity(f64(44.40), f64(26.00), "1")

	t.Run("versioned key", func(t *testing.T) {
		source := &keyedTableSource{key: "file:/data/coords.csv@10:1"}
		cacheRepo := &MockCacheRepository{}
		cacheRepo.On("GetDataset", mock.Anything, "file:/data/coords.csv@10:1").Return(ds, nil).Once()

		uc := usecase.NewDatasetUseCase(source, cacheRepo, zap.NewNop(), usecase.DatasetOptions{Memoize: true})

		got, err := uc.Dataset(ctx)
		require.NoError(t, err)
		assert.Same(t, ds, got)
		cacheRepo.AssertExpectations(t)
	})

	t.Run("unknown version skips the snapshot", func(t *testing.T) {
		source := &keyedTableSource{keyErr: apperrors.ErrDataUnavailable}
		source.On("Load", mock.Anything).Return(nil, apperrors.ErrDataUnavailable).Once()
		cacheRepo := &MockCacheRepository{}

		uc := usecase.NewDatasetUseCase(source, cacheRepo, zap.NewNop(), usecase.DatasetOptions{Memoize: true})

		_, err := uc.Dataset(ctx)
		assert.ErrorIs(t, err, apperrors.ErrDataUnavailable)
		cacheRepo.AssertNotCalled(t, "GetDataset", mock.Anything, mock.Anything)
		cacheRepo.AssertNotCalled(t, "SetDataset", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

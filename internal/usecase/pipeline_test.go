package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/residential-history/internal/domain"
	apperrors "github.com/residential-history/internal/pkg/errors"
	"github.com/residential-history/internal/usecase"
)

func f64(v float64) *float64 { return &v }

// coordRow builds a coordinate row; a nil value leaves the cell null.
func coordRow(id string, cells map[string]*float64) domain.CoordinateRow {
	values := make(map[string]*float64, len(cells))
	for k, v := range cells {
		if v != nil {
			values[k] = v
		}
	}
	return domain.CoordinateRow{ID: id, Values: values}
}

func newDataset(coordColumns []string, coordRows []domain.CoordinateRow, yearColumns []string, trajRows []domain.TrajectoryRow) *domain.Dataset {
	return &domain.Dataset{
		Coordinates: &domain.CoordinateTable{Columns: coordColumns, Rows: coordRows},
		Trajectory: &domain.TrajectoryTable{
			IDColumn:    domain.TrajectoryIDColumn,
			YearColumns: yearColumns,
			Rows:        trajRows,
		},
		Source: "test",
	}
}

var coordCols1990 = []string{"ID", "1990_lat", "1990_long"}

func singleEntity(lat, lon *float64, code string) *domain.Dataset {
	return newDataset(
		coordCols1990,
		[]domain.CoordinateRow{coordRow("A1", map[string]*float64{"1990_lat": lat, "1990_long": lon})},
		[]string{"1990"},
		[]domain.TrajectoryRow{{ID: "A1", Cells: map[string]string{"1990": code}}},
	)
}

func TestBuildPoints_Scenarios(t *testing.T) {
	bbox := domain.BucharestBBox

	t.Run("house inside bbox", func(t *testing.T) {
		points, stats, err := usecase.BuildPoints(1990, singleEntity(f64(44.40), f64(26.00), "1"), bbox)
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, domain.GeoPoint{ID: "A1", Year: 1990, Lat: 44.40, Lon: 26.00, Category: domain.CategoryHouse}, points[0])
		assert.Equal(t, "green", points[0].Category.Color())
		assert.Equal(t, 1, stats.Points)
	})

	t.Run("invalid category code", func(t *testing.T) {
		points, stats, err := usecase.BuildPoints(1990, singleEntity(f64(44.40), f64(26.00), "3"), bbox)
		require.NoError(t, err)
		assert.Empty(t, points)
		assert.Equal(t, 1, stats.DroppedCategory)
	})

	t.Run("outside bbox regardless of category", func(t *testing.T) {
		points, stats, err := usecase.BuildPoints(1990, singleEntity(f64(44.40), f64(30.0), "2"), bbox)
		require.NoError(t, err)
		assert.Empty(t, points)
		assert.Equal(t, 1, stats.DroppedOutsideBBox)
	})

	t.Run("apartment", func(t *testing.T) {
		points, _, err := usecase.BuildPoints(1990, singleEntity(f64(44.40), f64(26.00), "2"), bbox)
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, domain.CategoryApartment, points[0].Category)
		assert.Equal(t, "blue", points[0].Category.Color())
	})
}

func TestBuildPoints_BoundingBoxEdges(t *testing.T) {
	bbox := domain.BucharestBBox

	corners := [][2]float64{
		{bbox.MinLat, bbox.MinLon},
		{bbox.MinLat, bbox.MaxLon},
		{bbox.MaxLat, bbox.MinLon},
		{bbox.MaxLat, bbox.MaxLon},
	}
	for _, c := range corners {
		points, _, err := usecase.BuildPoints(1990, singleEntity(f64(c[0]), f64(c[1]), "1"), bbox)
		require.NoError(t, err)
		assert.Len(t, points, 1, "corner %v is inside", c)
	}

	points, _, err := usecase.BuildPoints(1990, singleEntity(f64(bbox.MaxLat+1), f64(bbox.MaxLon), "1"), bbox)
	require.NoError(t, err)
	assert.Empty(t, points, "one degree of latitude north of the box is outside")

	points, _, err = usecase.BuildPoints(1990, singleEntity(f64(bbox.MinLat-1), f64(bbox.MinLon), "1"), bbox)
	require.NoError(t, err)
	assert.Empty(t, points, "one degree of latitude south of the box is outside")
}

func TestBuildPoints_NullCoordinatesSurviveUntilJoin(t *testing.T) {
	// Both year columns exist, so rows with empty cells are still join candidates
	// and are only removed after the join.
	ds := newDataset(
		coordCols1990,
		[]domain.CoordinateRow{
			coordRow("A1", map[string]*float64{"1990_lat": nil, "1990_long": f64(26.0)}),
			coordRow("A2", map[string]*float64{"1990_lat": f64(44.4), "1990_long": nil}),
			coordRow("A3", map[string]*float64{"1990_lat": f64(44.4), "1990_long": f64(26.0)}),
		},
		[]string{"1990"},
		[]domain.TrajectoryRow{
			{ID: "A1", Cells: map[string]string{"1990": "1"}},
			{ID: "A2", Cells: map[string]string{"1990": "2"}},
			{ID: "A3", Cells: map[string]string{"1990": "2"}},
		},
	)

	points, stats, err := usecase.BuildPoints(1990, ds, domain.BucharestBBox)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Candidates)
	assert.Equal(t, 3, stats.Joined)
	assert.Equal(t, 2, stats.DroppedNullCoords)
	require.Len(t, points, 1)
	assert.Equal(t, "A3", points[0].ID)
}

func TestBuildPoints_MissingYearColumns(t *testing.T) {
	ds := newDataset(
		[]string{"ID", "1990_lat"}, // no 1990_long column
		[]domain.CoordinateRow{coordRow("A1", map[string]*float64{"1990_lat": f64(44.4)})},
		[]string{"1990"},
		[]domain.TrajectoryRow{{ID: "A1", Cells: map[string]string{"1990": "1"}}},
	)

	points, stats, err := usecase.BuildPoints(1990, ds, domain.BucharestBBox)
	require.NoError(t, err)
	assert.Empty(t, points)
	assert.Equal(t, 0, stats.Candidates)

	points, _, err = usecase.BuildPoints(1995, ds, domain.BucharestBBox)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestBuildPoints_InnerJoin(t *testing.T) {
	ds := newDataset(
		[]string{"ID", "1990_lat", "1990_long", "1991_lat", "1991_long"},
		[]domain.CoordinateRow{
			coordRow("A1", map[string]*float64{"1990_lat": f64(44.4), "1990_long": f64(26.0), "1991_lat": f64(44.5), "1991_long": f64(26.1)}),
			coordRow("B1", map[string]*float64{"1990_lat": f64(44.4), "1990_long": f64(26.0)}),
		},
		[]string{"1990", "1991"},
		[]domain.TrajectoryRow{
			{ID: "A1", Cells: map[string]string{"1990": "1", "1991": "2"}},
			{ID: "C1", Cells: map[string]string{"1990": "1"}},
		},
	)

	points, stats, err := usecase.BuildPoints(1990, ds, domain.BucharestBBox)
	require.NoError(t, err)
	require.Len(t, points, 1, "B1 has no trajectory row, C1 has no coordinates")
	assert.Equal(t, "A1", points[0].ID)
	assert.Equal(t, domain.CategoryHouse, points[0].Category)
	assert.Equal(t, 2, stats.Candidates)
	assert.Equal(t, 1, stats.Joined)

	points, _, err = usecase.BuildPoints(1991, ds, domain.BucharestBBox)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, domain.GeoPoint{ID: "A1", Year: 1991, Lat: 44.5, Lon: 26.1, Category: domain.CategoryApartment}, points[0])
}

func TestBuildPoints_DuplicateIDsFollowJoinOrder(t *testing.T) {
	ds := newDataset(
		coordCols1990,
		[]domain.CoordinateRow{
			coordRow("B", map[string]*float64{"1990_lat": f64(44.41), "1990_long": f64(26.01)}),
			coordRow("A", map[string]*float64{"1990_lat": f64(44.42), "1990_long": f64(26.02)}),
		},
		[]string{"1990", "1990.0"},
		[]domain.TrajectoryRow{
			{ID: "A", Cells: map[string]string{"1990": "1", "1990.0": "2"}},
			{ID: "B", Cells: map[string]string{"1990": "2"}},
		},
	)

	points, stats, err := usecase.BuildPoints(1990, ds, domain.BucharestBBox)
	require.NoError(t, err)
	require.Len(t, points, 3)

	// coordinate order first (B, A), then trajectory column order for A
	assert.Equal(t, "B", points[0].ID)
	assert.Equal(t, domain.CategoryApartment, points[0].Category)
	assert.Equal(t, "A", points[1].ID)
	assert.Equal(t, domain.CategoryHouse, points[1].Category)
	assert.Equal(t, "A", points[2].ID)
	assert.Equal(t, domain.CategoryApartment, points[2].Category)
	assert.Equal(t, 1, stats.DroppedCategory, "B has no 1990.0 cell, coerced to 0")
}

func TestBuildPoints_LenientCoercion(t *testing.T) {
	ds := newDataset(
		coordCols1990,
		[]domain.CoordinateRow{
			coordRow("A1", map[string]*float64{"1990_lat": f64(44.4), "1990_long": f64(26.0)}),
			coordRow("A2", map[string]*float64{"1990_lat": f64(44.4), "1990_long": f64(26.0)}),
			coordRow("A3", map[string]*float64{"1990_lat": f64(44.4), "1990_long": f64(26.0)}),
			coordRow("A4", map[string]*float64{"1990_lat": f64(44.4), "1990_long": f64(26.0)}),
		},
		[]string{"Notes", " 1990 "},
		[]domain.TrajectoryRow{
			{ID: "A1", Cells: map[string]string{" 1990 ": "1.0", "Notes": "1"}},
			{ID: "A2", Cells: map[string]string{" 1990 ": "house"}},
			{ID: "A3", Cells: map[string]string{}},
			{ID: "A4", Cells: map[string]string{" 1990 ": " 2 "}},
		},
	)

	points, stats, err := usecase.BuildPoints(1990, ds, domain.BucharestBBox)
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, "A1", points[0].ID)
	assert.Equal(t, domain.CategoryHouse, points[0].Category)
	assert.Equal(t, "A4", points[1].ID)
	assert.Equal(t, 1, stats.DroppedYearLabels, "the Notes column is not a year")
	assert.Equal(t, 2, stats.CoercedCategories)
	assert.Equal(t, 2, stats.DroppedCategory)
}

func TestBuildPoints_YearOutOfRangeIsRejected(t *testing.T) {
	ds := singleEntity(f64(44.40), f64(26.00), "1")

	for _, year := range []int{1988, 2018, 0, -1} {
		points, _, err := usecase.BuildPoints(year, ds, domain.BucharestBBox)
		assert.ErrorIs(t, err, apperrors.ErrYearOutOfRange, "year %d", year)
		assert.Nil(t, points)
	}

	for _, year := range []int{1989, 2017} {
		_, _, err := usecase.BuildPoints(year, ds, domain.BucharestBBox)
		assert.NoError(t, err, "year %d", year)
	}
}

func TestBuildPoints_MalformedInput(t *testing.T) {
	_, _, err := usecase.BuildPoints(1990, nil, domain.BucharestBBox)
	assert.ErrorIs(t, err, apperrors.ErrMalformedInput)

	ds := singleEntity(f64(44.40), f64(26.00), "1")
	ds.Coordinates.Columns = nil
	_, _, err = usecase.BuildPoints(1990, ds, domain.BucharestBBox)
	assert.ErrorIs(t, err, apperrors.ErrMalformedInput)

	// the identifier is positional, an unnamed leading column still joins
	ds = singleEntity(f64(44.40), f64(26.00), "1")
	ds.Coordinates.Columns = []string{"", "1990_lat", "1990_long"}
	points, _, err := usecase.BuildPoints(1990, ds, domain.BucharestBBox)
	require.NoError(t, err)
	assert.Len(t, points, 1)

	ds = singleEntity(f64(44.40), f64(26.00), "1")
	ds.Trajectory.IDColumn = ""
	_, _, err = usecase.BuildPoints(1990, ds, domain.BucharestBBox)
	assert.ErrorIs(t, err, apperrors.ErrMalformedInput)
}

func TestBuildPoints_Idempotent(t *testing.T) {
	ds := newDataset(
		coordCols1990,
		[]domain.CoordinateRow{
			coordRow("A1", map[string]*float64{"1990_lat": f64(44.4), "1990_long": f64(26.0)}),
			coordRow("A2", map[string]*float64{"1990_lat": f64(44.5), "1990_long": f64(26.1)}),
		},
		[]string{"1990"},
		[]domain.TrajectoryRow{
			{ID: "A2", Cells: map[string]string{"1990": "2"}},
			{ID: "A1", Cells: map[string]string{"1990": "1"}},
		},
	)

	first, _, err := usecase.BuildPoints(1990, ds, domain.BucharestBBox)
	require.NoError(t, err)
	second, _, err := usecase.BuildPoints(1990, ds, domain.BucharestBBox)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	for _, p := range first {
		assert.True(t, p.Category.Valid())
		assert.True(t, domain.BucharestBBox.Contains(p.Lat, p.Lon))
	}
}

func TestCoerceYear(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1990", 1990, true},
		{"1990.0", 1990, true},
		{" 2001 ", 2001, true},
		{"Notes", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
	}
	for _, tt := range tests {
		got, ok := usecase.CoerceYear(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestCoerceCategory(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Category
		ok   bool
	}{
		{"1", domain.CategoryHouse, true},
		{"2.0", domain.CategoryApartment, true},
		{"3", domain.Category(3), true},
		{"", domain.CategoryUnknown, false},
		{"apartment", domain.CategoryUnknown, false},
		{"inf", domain.CategoryUnknown, false},
	}
	for _, tt := range tests {
		got, ok := usecase.CoerceCategory(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

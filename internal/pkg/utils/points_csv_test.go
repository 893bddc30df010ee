package utils

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/residential-history/internal/domain"
)

func TestWritePointsCSV(t *testing.T) {
	points := []domain.GeoPoint{
		{ID: "101", Year: 2000, Lat: 44.43, Lon: 26.1, Category: domain.CategoryHouse},
		{ID: "=cmd", Year: 2000, Lat: 44.5, Lon: 26.05, Category: domain.CategoryApartment},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePointsCSV(&buf, points))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, PointsCSVHeader, records[0])
	assert.Equal(t, []string{"101", "2000", "44.43", "26.1", "1", "House"}, records[1])
	assert.Equal(t, []string{"'=cmd", "2000", "44.5", "26.05", "2", "Apartment"}, records[2])
}

func TestWritePointsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePointsCSV(&buf, nil))
	assert.Equal(t, "id,year,lat,lon,category,type\n", buf.String())
}

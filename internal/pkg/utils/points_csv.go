package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/residential-history/internal/domain"
)

// PointsCSVHeader is the header row of a points export.
var PointsCSVHeader = []string{"id", "year", "lat", "lon", "category", "type"}

// WritePointsCSV writes points in pipeline order
func WritePointsCSV(w io.Writer, points []domain.GeoPoint) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(PointsCSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, p := range points {
		row := []string{
			sanitizeCSVField(p.ID),
			strconv.Itoa(p.Year),
			strconv.FormatFloat(p.Lat, 'f', -1, 64),
			strconv.FormatFloat(p.Lon, 'f', -1, 64),
			strconv.Itoa(int(p.Category)),
			p.Category.Label(),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return nil
}

// sanitizeCSVField neutralizes spreadsheet formulas in free-text fields
func sanitizeCSVField(field string) string {
	if strings.HasPrefix(field, "=") || strings.HasPrefix(field, "+") ||
		strings.HasPrefix(field, "-") || strings.HasPrefix(field, "@") {
		return "'" + field
	}
	return field
}

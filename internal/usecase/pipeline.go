package usecase

import (
	"math"
	"strconv"
	"strings"

	"github.com/residential-history/internal/domain"
	"github.com/residential-history/internal/pkg/errors"
)

// coordinateCandidate is one row of the per-year coordinate extraction.
// Lat/Lon are nil when the row has no value for that year.
type coordinateCandidate struct {
	id  string
	lat *float64
	lon *float64
}

// BuildPoints turns the two source tables into map points for one year.
//
// Steps, in order:
//  1. extract "{year}_lat"/"{year}_long" for every coordinate row when both
//     columns exist in the schema. Rows with null values still become candidates.
//  2. melt the trajectory table to (id, year, code). Year labels that are not
//     numbers are dropped; codes that are not numbers become 0.
//  3. inner join on (id, year).
//  4. drop rows with a null latitude or longitude.
//  5. keep categories 1 and 2 only.
//  6. keep points inside bbox, edges included.
//
// Output follows coordinate row order, then trajectory column/row order for
// duplicate ids. Years outside domain.SupportedYears are rejected.
func BuildPoints(year int, dataset *domain.Dataset, bbox domain.BoundingBox) ([]domain.GeoPoint, domain.PipelineStats, error) {
	stats := domain.PipelineStats{Year: year}

	if !domain.SupportedYears.Contains(year) {
		return nil, stats, errors.ErrYearOutOfRange.WithDetails(map[string]interface{}{
			"year": year,
			"min":  domain.SupportedYears.Min,
			"max":  domain.SupportedYears.Max,
		})
	}
	if err := checkSchema(dataset); err != nil {
		return nil, stats, err
	}

	candidates := extractCoordinates(year, dataset.Coordinates)
	stats.Candidates = len(candidates)

	byID := meltTrajectory(year, dataset.Trajectory, &stats)

	points := make([]domain.GeoPoint, 0, len(candidates))
	for _, c := range candidates {
		for _, category := range byID[c.id] {
			stats.Joined++

			if c.lat == nil || c.lon == nil {
				stats.DroppedNullCoords++
				continue
			}
			if !category.Valid() {
				stats.DroppedCategory++
				continue
			}
			if !bbox.Contains(*c.lat, *c.lon) {
				stats.DroppedOutsideBBox++
				continue
			}

			points = append(points, domain.GeoPoint{
				ID:       c.id,
				Year:     year,
				Lat:      *c.lat,
				Lon:      *c.lon,
				Category: category,
			})
		}
	}

	stats.Points = len(points)
	return points, stats, nil
}

func checkSchema(dataset *domain.Dataset) error {
	if dataset == nil {
		return errors.ErrMalformedInput.WithDetails(map[string]interface{}{"reason": "no dataset"})
	}
	if !dataset.Coordinates.HasIdentifier() {
		return errors.ErrMalformedInput.WithDetails(map[string]interface{}{
			"table":  "coordinates",
			"reason": "no identifier column",
		})
	}
	if dataset.Trajectory == nil || dataset.Trajectory.IDColumn == "" {
		return errors.ErrMalformedInput.WithDetails(map[string]interface{}{
			"table":  "trajectory",
			"reason": "no identifier column",
		})
	}
	return nil
}

// extractCoordinates checks column existence, not value presence.
func extractCoordinates(year int, table *domain.CoordinateTable) []coordinateCandidate {
	latCol, lonCol := domain.LatColumn(year), domain.LongColumn(year)
	if !table.HasColumn(latCol) || !table.HasColumn(lonCol) {
		return nil
	}

	out := make([]coordinateCandidate, 0, len(table.Rows))
	for _, row := range table.Rows {
		out = append(out, coordinateCandidate{
			id:  row.ID,
			lat: row.Value(latCol),
			lon: row.Value(lonCol),
		})
	}
	return out
}

// meltTrajectory melts the table and keeps only the category codes of the
// requested year, indexed by id. Column-major order matches a full wide-to-long reshape.
func meltTrajectory(year int, table *domain.TrajectoryTable, stats *domain.PipelineStats) map[string][]domain.Category {
	byID := make(map[string][]domain.Category)

	for _, label := range table.YearColumns {
		y, ok := CoerceYear(label)
		if !ok {
			stats.DroppedYearLabels++
			continue
		}
		if y != year {
			continue
		}
		for _, row := range table.Rows {
			code, ok := CoerceCategory(row.Cells[label])
			if !ok {
				stats.CoercedCategories++
			}
			byID[row.ID] = append(byID[row.ID], code)
			stats.TrajectoryRows++
		}
	}

	return byID
}

// CoerceYear parses a year column label ("1990", "1990.0", " 1990 ").
// Fractional labels are truncated toward zero. Non-numeric labels report false.
func CoerceYear(label string) (int, bool) {
	v, ok := parseFinite(label)
	if !ok {
		return 0, false
	}
	return int(v), true
}

// CoerceCategory parses a category cell. Empty or non-numeric cells become
// CategoryUnknown and report false; numeric cells are truncated to int.
func CoerceCategory(cell string) (domain.Category, bool) {
	v, ok := parseFinite(cell)
	if !ok {
		return domain.CategoryUnknown, false
	}
	return domain.Category(int(v)), true
}

func parseFinite(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

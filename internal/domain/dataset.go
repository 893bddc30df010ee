package domain

import (
	"fmt"
	"time"
)

// TrajectoryIDColumn is the identifier header of the trajectory table.
const TrajectoryIDColumn = "Response ID"

// CoordinateTable - таблица координат: одна строка на объект, пара колонок
// "{year}_lat" / "{year}_long" на каждый год. Первая колонка - идентификатор.
type CoordinateTable struct {
	Columns []string        `json:"columns"`
	Rows    []CoordinateRow `json:"rows"`
}

// CoordinateRow holds one entity. A column absent from Values is null for this row.
type CoordinateRow struct {
	ID     string              `json:"id"`
	Values map[string]*float64 `json:"values"`
}

// HasIdentifier reports whether the table has a leading column. The identifier
// is taken by position, its header text may be empty.
func (t *CoordinateTable) HasIdentifier() bool {
	return t != nil && len(t.Columns) > 0
}

// IDColumn returns the header of the leading identifier column, or "" when the table has no columns.
func (t *CoordinateTable) IDColumn() string {
	if t == nil || len(t.Columns) == 0 {
		return ""
	}
	return t.Columns[0]
}

// HasColumn checks the schema only; a row may still hold null for an existing column.
func (t *CoordinateTable) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Value returns the cell of the row for the column, nil when null.
func (r CoordinateRow) Value(column string) *float64 {
	return r.Values[column]
}

// LatColumn and LongColumn name the per-year coordinate columns.
func LatColumn(year int) string  { return fmt.Sprintf("%d_lat", year) }
func LongColumn(year int) string { return fmt.Sprintf("%d_long", year) }

// TrajectoryTable - таблица траекторий: одна строка на объект, одна колонка на год,
// значения ячеек - сырые коды типа жилья.
type TrajectoryTable struct {
	IDColumn    string          `json:"id_column"`
	YearColumns []string        `json:"year_columns"`
	Rows        []TrajectoryRow `json:"rows"`
}

// TrajectoryRow keeps raw cell text keyed by the year column label.
type TrajectoryRow struct {
	ID    string            `json:"id"`
	Cells map[string]string `json:"cells"`
}

// Dataset - загруженные исходные таблицы. После загрузки не изменяется.
type Dataset struct {
	Coordinates *CoordinateTable `json:"coordinates"`
	Trajectory  *TrajectoryTable `json:"trajectory"`
	Source      string           `json:"source"`
	LoadedAt    time.Time        `json:"loaded_at"`
}

// DatasetSummary is a compact description of a dataset for logs and the stats endpoint.
type DatasetSummary struct {
	Source            string    `json:"source"`
	LoadedAt          time.Time `json:"loaded_at"`
	CoordinateRows    int       `json:"coordinate_rows"`
	CoordinateColumns int       `json:"coordinate_columns"`
	TrajectoryRows    int       `json:"trajectory_rows"`
	TrajectoryYears   int       `json:"trajectory_years"`
}

func (d *Dataset) Summary() DatasetSummary {
	s := DatasetSummary{Source: d.Source, LoadedAt: d.LoadedAt}
	if d.Coordinates != nil {
		s.CoordinateRows = len(d.Coordinates.Rows)
		s.CoordinateColumns = len(d.Coordinates.Columns)
	}
	if d.Trajectory != nil {
		s.TrajectoryRows = len(d.Trajectory.Rows)
		s.TrajectoryYears = len(d.Trajectory.YearColumns)
	}
	return s
}

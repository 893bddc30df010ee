package file

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/residential-history/internal/domain"
	apperrors "github.com/residential-history/internal/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// readCSV reads every record. Rows may be shorter or longer than the header.
func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// readSheet reads all rows of one sheet of an xlsx workbook.
func readSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found in %s", sheet, path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// CoordinatesFromRows builds the coordinate table. The first column is the
// identifier by position, an empty header cell (index column) is fine.
func CoordinatesFromRows(rows [][]string) (*domain.CoordinateTable, error) {
	if len(rows) == 0 || isBlank(rows[0]) {
		return nil, apperrors.ErrMalformedInput.WithDetails(map[string]interface{}{
			"table":  "coordinates",
			"reason": "no identifier column",
		})
	}

	header := normalizeHeader(rows[0])
	table := &domain.CoordinateTable{
		Columns: header,
		Rows:    make([]domain.CoordinateRow, 0, len(rows)-1),
	}

	for _, record := range rows[1:] {
		if isBlank(record) {
			continue
		}
		row := domain.CoordinateRow{
			ID:     canonicalID(cell(record, 0)),
			Values: make(map[string]*float64, len(header)-1),
		}
		for i := 1; i < len(header); i++ {
			if v, ok := parseNumber(cell(record, i)); ok {
				row.Values[header[i]] = &v
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// TrajectoryFromRows builds the trajectory table. Every header other than
// "Response ID" is kept as a year column with its raw label; cells stay raw text.
func TrajectoryFromRows(rows [][]string) (*domain.TrajectoryTable, error) {
	if len(rows) == 0 {
		return nil, apperrors.ErrMalformedInput.WithDetails(map[string]interface{}{
			"table":  "trajectory",
			"reason": "no header row",
		})
	}

	header := normalizeHeader(rows[0])
	idIdx := -1
	for i, h := range header {
		if h == domain.TrajectoryIDColumn {
			idIdx = i
			break
		}
	}
	if idIdx < 0 {
		return nil, apperrors.ErrMalformedInput.WithDetails(map[string]interface{}{
			"table":  "trajectory",
			"reason": fmt.Sprintf("missing %q column", domain.TrajectoryIDColumn),
		})
	}

	table := &domain.TrajectoryTable{
		IDColumn: domain.TrajectoryIDColumn,
		Rows:     make([]domain.TrajectoryRow, 0, len(rows)-1),
	}
	yearIdx := make([]int, 0, len(header)-1)
	for i, h := range header {
		if i == idIdx {
			continue
		}
		table.YearColumns = append(table.YearColumns, h)
		yearIdx = append(yearIdx, i)
	}

	for _, record := range rows[1:] {
		if isBlank(record) {
			continue
		}
		row := domain.TrajectoryRow{
			ID:    canonicalID(cell(record, idIdx)),
			Cells: make(map[string]string, len(yearIdx)),
		}
		for j, i := range yearIdx {
			if v := cell(record, i); v != "" {
				row.Cells[table.YearColumns[j]] = v
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return out
}

func cell(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseNumber treats empty, NaN and non-numeric cells as null.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// integralID matches plain decimal integers, optionally with a zero fraction.
var integralID = regexp.MustCompile(`^-?\d+(\.0+)?$`)

// canonicalID maps integral decimal ids to integer text ("101.0" -> "101").
// Anything else, hex and exponent forms included, stays opaque.
func canonicalID(s string) string {
	if !integralID.MatchString(s) {
		return s
	}
	whole, _, _ := strings.Cut(s, ".")
	v, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return s
	}
	return strconv.FormatInt(v, 10)
}

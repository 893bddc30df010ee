package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/residential-history/internal/domain"
	"github.com/residential-history/internal/domain/repository"
	pkgerrors "github.com/residential-history/internal/pkg/errors"
	"go.uber.org/zap"
)

const (
	tableCoordinates = "coordinates"
	tableTrajectory  = "trajectory"

	// batchSize keeps a multi-row insert well under the 65535 bind parameter limit
	batchSize = 1000
)

type metaRow struct {
	Source   string    `db:"source"`
	IDColumn string    `db:"id_column"`
	LoadedAt time.Time `db:"loaded_at"`
}

type columnRow struct {
	TableName string `db:"table_name"`
	Position  int    `db:"position"`
	Name      string `db:"name"`
}

type entityRow struct {
	Position int    `db:"position"`
	EntityID string `db:"entity_id"`
}

type coordinateValueRow struct {
	RowPosition int     `db:"row_position"`
	ColumnName  string  `db:"column_name"`
	Value       float64 `db:"value"`
}

type trajectoryCellRow struct {
	RowPosition int    `db:"row_position"`
	ColumnName  string `db:"column_name"`
	Value       string `db:"value"`
}

type tableRepository struct {
	db     *sqlx.DB
	name   string
	logger *zap.Logger
}

// TableRepository читает и сохраняет исходные таблицы в PostgreSQL
type TableRepository interface {
	repository.TableSource
	repository.TableWriter
}

// NewTableRepository создает репозиторий исходных таблиц
func NewTableRepository(db *DB) TableRepository {
	return &tableRepository{
		db:     db.DB,
		name:   db.label,
		logger: db.logger,
	}
}

func (r *tableRepository) Name() string {
	return r.name
}

// Load читает импортированные таблицы. Пустая база - ErrDataUnavailable.
func (r *tableRepository) Load(ctx context.Context) (*domain.Dataset, error) {
	var meta metaRow
	err := r.db.GetContext(ctx, &meta, `SELECT source, id_column, loaded_at FROM dataset_meta WHERE id = 1`)
	if err == sql.ErrNoRows {
		return nil, pkgerrors.ErrDataUnavailable.WithDetails(map[string]interface{}{
			"source": r.name,
			"reason": "no dataset imported",
		})
	}
	if err != nil {
		r.logger.Error("failed to read dataset meta", zap.Error(err))
		return nil, pkgerrors.ErrDataUnavailable.Wrap(err)
	}

	var columns []columnRow
	if err := r.db.SelectContext(ctx, &columns,
		`SELECT table_name, position, name FROM dataset_columns ORDER BY table_name, position`); err != nil {
		r.logger.Error("failed to read dataset columns", zap.Error(err))
		return nil, pkgerrors.ErrDataUnavailable.Wrap(err)
	}

	coordinates, err := r.loadCoordinates(ctx, columnsOf(columns, tableCoordinates))
	if err != nil {
		return nil, err
	}

	trajectory, err := r.loadTrajectory(ctx, meta.IDColumn, columnsOf(columns, tableTrajectory))
	if err != nil {
		return nil, err
	}

	r.logger.Info("Source tables loaded",
		zap.String("source", r.name),
		zap.Int("coordinate_rows", len(coordinates.Rows)),
		zap.Int("trajectory_rows", len(trajectory.Rows)),
	)

	return &domain.Dataset{
		Coordinates: coordinates,
		Trajectory:  trajectory,
		Source:      meta.Source,
		LoadedAt:    meta.LoadedAt,
	}, nil
}

func (r *tableRepository) loadCoordinates(ctx context.Context, columns []string) (*domain.CoordinateTable, error) {
	var rows []entityRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT position, entity_id FROM coordinate_rows ORDER BY position`); err != nil {
		r.logger.Error("failed to read coordinate rows", zap.Error(err))
		return nil, pkgerrors.ErrDataUnavailable.Wrap(err)
	}

	var values []coordinateValueRow
	if err := r.db.SelectContext(ctx, &values,
		`SELECT row_position, column_name, value FROM coordinate_values`); err != nil {
		r.logger.Error("failed to read coordinate values", zap.Error(err))
		return nil, pkgerrors.ErrDataUnavailable.Wrap(err)
	}

	table := &domain.CoordinateTable{Columns: columns, Rows: make([]domain.CoordinateRow, len(rows))}
	index := make(map[int]int, len(rows))
	for i, row := range rows {
		index[row.Position] = i
		table.Rows[i] = domain.CoordinateRow{ID: row.EntityID, Values: map[string]*float64{}}
	}
	for _, v := range values {
		i, ok := index[v.RowPosition]
		if !ok {
			continue
		}
		value := v.Value
		table.Rows[i].Values[v.ColumnName] = &value
	}

	return table, nil
}

func (r *tableRepository) loadTrajectory(ctx context.Context, idColumn string, columns []string) (*domain.TrajectoryTable, error) {
	var rows []entityRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT position, entity_id FROM trajectory_rows ORDER BY position`); err != nil {
		r.logger.Error("failed to read trajectory rows", zap.Error(err))
		return nil, pkgerrors.ErrDataUnavailable.Wrap(err)
	}

	var cells []trajectoryCellRow
	if err := r.db.SelectContext(ctx, &cells,
		`SELECT row_position, column_name, value FROM trajectory_cells`); err != nil {
		r.logger.Error("failed to read trajectory cells", zap.Error(err))
		return nil, pkgerrors.ErrDataUnavailable.Wrap(err)
	}

	table := &domain.TrajectoryTable{IDColumn: idColumn, YearColumns: columns, Rows: make([]domain.TrajectoryRow, len(rows))}
	index := make(map[int]int, len(rows))
	for i, row := range rows {
		index[row.Position] = i
		table.Rows[i] = domain.TrajectoryRow{ID: row.EntityID, Cells: map[string]string{}}
	}
	for _, c := range cells {
		i, ok := index[c.RowPosition]
		if !ok {
			continue
		}
		table.Rows[i].Cells[c.ColumnName] = c.Value
	}

	return table, nil
}

// Save заменяет импортированные таблицы целиком в одной транзакции
func (r *tableRepository) Save(ctx context.Context, ds *domain.Dataset) error {
	if ds == nil || ds.Coordinates == nil || ds.Trajectory == nil {
		return pkgerrors.ErrMalformedInput.WithDetails(map[string]interface{}{"reason": "dataset is incomplete"})
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM trajectory_cells`,
		`DELETE FROM trajectory_rows`,
		`DELETE FROM coordinate_values`,
		`DELETE FROM coordinate_rows`,
		`DELETE FROM dataset_columns`,
		`DELETE FROM dataset_meta`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear previous import: %w", err)
		}
	}

	loadedAt := ds.LoadedAt
	if loadedAt.IsZero() {
		loadedAt = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO dataset_meta (id, source, id_column, loaded_at) VALUES (1, $1, $2, $3)`,
		ds.Source, ds.Trajectory.IDColumn, loadedAt); err != nil {
		return fmt.Errorf("insert dataset meta: %w", err)
	}

	columns := make([]columnRow, 0, len(ds.Coordinates.Columns)+len(ds.Trajectory.YearColumns))
	for i, name := range ds.Coordinates.Columns {
		columns = append(columns, columnRow{TableName: tableCoordinates, Position: i, Name: name})
	}
	for i, name := range ds.Trajectory.YearColumns {
		columns = append(columns, columnRow{TableName: tableTrajectory, Position: i, Name: name})
	}
	if err := insertBatches(ctx, tx, `INSERT INTO dataset_columns (table_name, position, name)
		VALUES (:table_name, :position, :name)`, columns); err != nil {
		return fmt.Errorf("insert columns: %w", err)
	}

	coordRows := make([]entityRow, 0, len(ds.Coordinates.Rows))
	var coordValues []coordinateValueRow
	for i, row := range ds.Coordinates.Rows {
		coordRows = append(coordRows, entityRow{Position: i, EntityID: row.ID})
		for col, v := range row.Values {
			if v == nil {
				continue
			}
			coordValues = append(coordValues, coordinateValueRow{RowPosition: i, ColumnName: col, Value: *v})
		}
	}
	if err := insertBatches(ctx, tx, `INSERT INTO coordinate_rows (position, entity_id)
		VALUES (:position, :entity_id)`, coordRows); err != nil {
		return fmt.Errorf("insert coordinate rows: %w", err)
	}
	if err := insertBatches(ctx, tx, `INSERT INTO coordinate_values (row_position, column_name, value)
		VALUES (:row_position, :column_name, :value)`, coordValues); err != nil {
		return fmt.Errorf("insert coordinate values: %w", err)
	}

	trajRows := make([]entityRow, 0, len(ds.Trajectory.Rows))
	var trajCells []trajectoryCellRow
	for i, row := range ds.Trajectory.Rows {
		trajRows = append(trajRows, entityRow{Position: i, EntityID: row.ID})
		for col, v := range row.Cells {
			trajCells = append(trajCells, trajectoryCellRow{RowPosition: i, ColumnName: col, Value: v})
		}
	}
	if err := insertBatches(ctx, tx, `INSERT INTO trajectory_rows (position, entity_id)
		VALUES (:position, :entity_id)`, trajRows); err != nil {
		return fmt.Errorf("insert trajectory rows: %w", err)
	}
	if err := insertBatches(ctx, tx, `INSERT INTO trajectory_cells (row_position, column_name, value)
		VALUES (:row_position, :column_name, :value)`, trajCells); err != nil {
		return fmt.Errorf("insert trajectory cells: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	r.logger.Info("Source tables imported",
		zap.String("source", ds.Source),
		zap.Int("coordinate_rows", len(coordRows)),
		zap.Int("coordinate_values", len(coordValues)),
		zap.Int("trajectory_rows", len(trajRows)),
		zap.Int("trajectory_cells", len(trajCells)),
	)

	return nil
}

func insertBatches[T any](ctx context.Context, tx *sqlx.Tx, query string, rows []T) error {
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := tx.NamedExecContext(ctx, query, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func columnsOf(columns []columnRow, table string) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if c.TableName == table {
			out = append(out, c.Name)
		}
	}
	return out
}

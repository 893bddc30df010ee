package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/residential-history/internal/domain"
	"github.com/residential-history/internal/domain/repository"
	apperrors "github.com/residential-history/internal/pkg/errors"
	"go.uber.org/zap"
)

type fileSource struct {
	coordPath       string
	trajectoryPath  string
	trajectorySheet string
	logger          *zap.Logger
}

// NewSource returns a TableSource reading the coordinate table from CSV and the
// trajectory table from an xlsx sheet (or CSV, chosen by file extension).
func NewSource(coordPath, trajectoryPath, trajectorySheet string, logger *zap.Logger) repository.TableSource {
	return &fileSource{
		coordPath:       coordPath,
		trajectoryPath:  trajectoryPath,
		trajectorySheet: trajectorySheet,
		logger:          logger,
	}
}

func (s *fileSource) Name() string {
	return fmt.Sprintf("file:%s+%s", filepath.Base(s.coordPath), filepath.Base(s.trajectoryPath))
}

// SnapshotKey identifies the exact files behind the tables: absolute path,
// size and modification time of both, plus the sheet name.
func (s *fileSource) SnapshotKey() (string, error) {
	parts := make([]string, 0, 2)
	for _, path := range []string{s.coordPath, s.trajectoryPath} {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", path, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", apperrors.ErrDataUnavailable.
				WithDetails(map[string]interface{}{"path": path}).
				Wrap(err)
		}
		parts = append(parts, fmt.Sprintf("%s@%d:%d", abs, info.Size(), info.ModTime().UnixNano()))
	}
	return fmt.Sprintf("file:%s#%s", strings.Join(parts, "+"), s.trajectorySheet), nil
}

func (s *fileSource) Load(ctx context.Context) (*domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	coordinates, err := s.loadCoordinates()
	if err != nil {
		return nil, err
	}

	trajectory, err := s.loadTrajectory()
	if err != nil {
		return nil, err
	}

	dataset := &domain.Dataset{
		Coordinates: coordinates,
		Trajectory:  trajectory,
		Source:      s.Name(),
		LoadedAt:    time.Now().UTC(),
	}

	s.logger.Info("Source tables loaded",
		zap.String("source", dataset.Source),
		zap.Int("coordinate_rows", len(coordinates.Rows)),
		zap.Int("trajectory_rows", len(trajectory.Rows)),
		zap.Duration("took", time.Since(start)),
	)

	return dataset, nil
}

func (s *fileSource) loadCoordinates() (*domain.CoordinateTable, error) {
	rows, err := s.readCSVFile(s.coordPath)
	if err != nil {
		return nil, err
	}

	table, err := CoordinatesFromRows(rows)
	if err != nil {
		s.logger.Error("Coordinate table has no usable schema", zap.String("path", s.coordPath), zap.Error(err))
		return nil, err
	}
	return table, nil
}

func (s *fileSource) loadTrajectory() (*domain.TrajectoryTable, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(s.trajectoryPath)) {
	case ".csv":
		rows, err = s.readCSVFile(s.trajectoryPath)
	default:
		rows, err = s.readSheetFile(s.trajectoryPath, s.trajectorySheet)
	}
	if err != nil {
		return nil, err
	}

	table, err := TrajectoryFromRows(rows)
	if err != nil {
		s.logger.Error("Trajectory table has no usable schema", zap.String("path", s.trajectoryPath), zap.Error(err))
		return nil, err
	}
	return table, nil
}

func (s *fileSource) readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		s.logger.Error("Failed to open source file", zap.String("path", path), zap.Error(err))
		return nil, apperrors.ErrDataUnavailable.
			WithDetails(map[string]interface{}{"path": path}).
			Wrap(err)
	}
	defer f.Close()

	rows, err := readCSV(f)
	if err != nil {
		s.logger.Error("Failed to parse source file", zap.String("path", path), zap.Error(err))
		return nil, apperrors.ErrDataUnavailable.
			WithDetails(map[string]interface{}{"path": path}).
			Wrap(err)
	}
	return rows, nil
}

func (s *fileSource) readSheetFile(path, sheet string) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		s.logger.Error("Failed to open source file", zap.String("path", path), zap.Error(err))
		return nil, apperrors.ErrDataUnavailable.
			WithDetails(map[string]interface{}{"path": path}).
			Wrap(err)
	}

	rows, err := readSheet(path, sheet)
	if err != nil {
		s.logger.Error("Failed to parse workbook", zap.String("path", path), zap.String("sheet", sheet), zap.Error(err))
		return nil, apperrors.ErrDataUnavailable.
			WithDetails(map[string]interface{}{"path": path, "sheet": sheet}).
			Wrap(err)
	}
	return rows, nil
}

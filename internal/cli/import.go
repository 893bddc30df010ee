package cli

import (
	"fmt"

	"github.com/residential-history/internal/app"
	"github.com/residential-history/internal/repository/file"
	"github.com/residential-history/internal/repository/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func importCommand(st *state) *cobra.Command {
	var coordPath, trajectoryPath, sheet string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the coordinate CSV and trajectory workbook into PostgreSQL",
		Long: `Reads the coordinate table (CSV) and the trajectory table (xlsx sheet or CSV)
and replaces the tables stored in PostgreSQL. The server reads them with DATA_SOURCE=postgres.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := st.cfg
			if coordPath == "" {
				coordPath = cfg.Data.CoordPath
			}
			if trajectoryPath == "" {
				trajectoryPath = cfg.Data.TrajectoryPath
			}
			if sheet == "" {
				sheet = cfg.Data.TrajectorySheet
			}

			source := file.NewSource(coordPath, trajectoryPath, sheet, st.log)
			ds, err := source.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("read source tables: %w", err)
			}

			db, err := app.OpenDatabase(cfg, st.log)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					st.log.Warn("Failed to close database", zap.Error(err))
				}
			}()

			if err := postgres.NewTableRepository(db).Save(cmd.Context(), ds); err != nil {
				return fmt.Errorf("import: %w", err)
			}

			summary := ds.Summary()
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s: %d coordinate rows, %d trajectory rows, %d year columns\n",
				summary.Source, summary.CoordinateRows, summary.TrajectoryRows, summary.TrajectoryYears)
			return nil
		},
	}

	cmd.Flags().StringVar(&coordPath, "coords", "", "Coordinate CSV (default DATA_COORD_PATH)")
	cmd.Flags().StringVar(&trajectoryPath, "trajectory", "", "Trajectory workbook or CSV (default DATA_TRAJECTORY_PATH)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Trajectory sheet name (default DATA_TRAJECTORY_SHEET)")

	return cmd
}

package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/residential-history/internal/app"
	"github.com/residential-history/internal/domain"
	"github.com/residential-history/internal/pkg/utils"
	"github.com/residential-history/internal/usecase/dto"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func pointsCommand(st *state) *cobra.Command {
	var (
		year   int
		format string
		source string
	)

	cmd := &cobra.Command{
		Use:   "points",
		Short: "Print the residential points of a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "json" && format != "csv" {
				return fmt.Errorf("unknown format %q (expected json or csv)", format)
			}

			cfg := *st.cfg
			if source != "" {
				cfg.Data.Source = strings.ToLower(source)
			}
			if year == 0 {
				year = cfg.Map.DefaultYear
			}
			if !domain.SupportedYears.Contains(year) {
				return fmt.Errorf("year %d outside %d-%d", year, domain.SupportedYears.Min, domain.SupportedYears.Max)
			}
			// one-shot run: no snapshot cache
			cfg.Redis.Enabled = false

			application, err := app.New(&cfg, st.log)
			if err != nil {
				return err
			}
			defer func() {
				if err := application.Close(); err != nil {
					st.log.Warn("Failed to close connections", zap.Error(err))
				}
			}()

			points, err := application.Maps.GetPoints(cmd.Context(), year)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "csv" {
				return utils.WritePointsCSV(out, points)
			}

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(dto.PointsResponse{Year: year, Total: len(points), Points: points})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Year 1989-2017 (default MAP_DEFAULT_YEAR)")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or csv")
	cmd.Flags().StringVar(&source, "source", "", "Override DATA_SOURCE: file or postgres")

	return cmd
}

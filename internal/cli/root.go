// Package cli - команды resmap: импорт исходных таблиц в PostgreSQL и выгрузка точек за год.
package cli

import (
	"fmt"

	"github.com/residential-history/internal/config"
	"github.com/residential-history/internal/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// state is shared by all subcommands and filled in PersistentPreRunE
type state struct {
	envFile  string
	logLevel string

	cfg *config.Config
	log *zap.Logger
}

// RootCommand creates and returns the root command
func RootCommand() *cobra.Command {
	st := &state{}

	rootCmd := &cobra.Command{
		Use:           "resmap",
		Short:         "Bucharest residential history map tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&st.envFile, "env-file", ".env", "Path to an env file with configuration (optional)")
	rootCmd.PersistentFlags().StringVar(&st.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile(st.envFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log, err := logger.NewCLI(st.logLevel)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		st.cfg = cfg
		st.log = log
		return nil
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if st.log != nil {
			_ = st.log.Sync()
		}
	}

	rootCmd.AddCommand(
		importCommand(st),
		pointsCommand(st),
	)

	return rootCmd
}

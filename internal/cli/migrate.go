package cli

import (
	"fmt"
	"puspa_backend/pkg/database"
	"puspa_backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newMigrateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the local backend tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger.InitConsole(cmd.ErrOrStderr(), zapcore.InfoLevel)

			db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Log.Info("Migration finished", zap.String("db", cfg.Database.DBName))
			return nil
		},
	}
}

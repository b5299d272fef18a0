package commands

import (
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/logging"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/SscSPs/ledger_engine/internal/platform/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations to the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)

			switch cfg.DBDriver {
			case config.DriverPostgres:
				err = database.MigratePostgres(cfg.DatabaseURL, logger)
			default:
				err = database.MigrateSQLite(cfg.SQLitePath, logger)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"status": "migrated", "driver": cfg.DBDriver})
		},
	}
}

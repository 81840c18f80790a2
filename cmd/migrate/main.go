package main

// Run database migrations:
//   go run ./cmd/migrate up
//   go run ./cmd/migrate down
//   go run ./cmd/migrate status

import (
	"context"
	"database/sql"
	"os"

	"github.com/spf13/cobra"

	"workspace-backend/internal/shared/config"
	"workspace-backend/internal/shared/storage/db"
	"workspace-backend/internal/shared/telemetry"
)

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "manage the workspace database schema",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(
		migrationCommand("up", "apply all pending migrations", db.RunMigrations),
		migrationCommand("down", "roll back the most recent migration", db.RollbackMigration),
		migrationCommand("status", "print applied and pending migrations", db.MigrationStatus),
	)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

func migrationCommand(use, short string, run func(context.Context, *sql.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			ctx := cmd.Context()

			sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			return run(ctx, sqlDB)
		},
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

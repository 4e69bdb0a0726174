package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/infra/postgres/migrations"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the quiz analytics tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	return migrateDSN(ctx, cfg.Postgres.URL)
}

func migrateDSN(ctx context.Context, dsn string) error {
	applied, err := migrations.Apply(ctx, dsn)
	if err != nil {
		return err
	}
	slog.Info("migrations applied", "count", len(applied), "names", applied)
	return nil
}

// Package migrate implements the standalone migration CLI command.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"averon/internal/infrastructure/config"
	"averon/internal/infrastructure/database"
	"averon/internal/infrastructure/persistence/models"
	"averon/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, env != "production"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if err := models.AutoMigrate(database.Get()); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Infow("database migrations applied", "database", cfg.Database.Database)
	return nil
}

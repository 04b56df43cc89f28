package main

import (
	"context"
	"fmt"

	"github.com/dreamtracer/dreamtracer-api/internal/platform/logger"
	"github.com/dreamtracer/dreamtracer-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

// migrationCommands are the goose commands exposed by migrate.
var migrationCommands = []string{"up", "down", "status", "version", "redo", "reset"}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	for _, name := range migrationCommands {
		cmd.AddCommand(gooseCmd(name))
	}
	cmd.AddCommand(createMigrationCmd())
	return cmd
}

func gooseCmd(command string) *cobra.Command {
	return &cobra.Command{
		Use:   command,
		Short: fmt.Sprintf("Run goose %s against the embedded migrations", command),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigration(cmd.Context(), command)
		},
	}
}

func runMigration(ctx context.Context, command string) error {
	cfg, log, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database connection", "error", err)
		}
	}()

	log.Info("running migrations", "command", command)
	return postgres.Migrate(ctx, db, command, log)
}

func createMigrationCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new timestamped SQL migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.CreateMigration(dir, args[0], logger.FromContext(cmd.Context()))
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "internal/platform/postgres/migrations", "migrations directory")
	return cmd
}

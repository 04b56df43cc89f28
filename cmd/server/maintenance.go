package main

import (
	"fmt"

	"github.com/dreamtracer/dreamtracer-api/internal/platform/postgres"
	"github.com/dreamtracer/dreamtracer-api/internal/service"
	"github.com/spf13/cobra"
)

func maintenanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Run maintenance jobs once",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "cleanup",
		Short: "Delete analyses older than the configured retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfigAndLogger()
			if err != nil {
				return err
			}
			db, err := postgres.Open(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()

			maintenance := service.NewMaintenanceService(postgres.NewPostgresAnalysisStore(db, log), cfg.Analysis, log)
			deleted, err := maintenance.CleanupOldAnalyses(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d analyses\n", deleted)
			return nil
		},
	})
	return cmd
}

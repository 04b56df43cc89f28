// Package main is the dreamtracer command: the HTTP API server, database
// migrations, analysis maintenance and an offline analysis runner.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dreamtracer",
		Short:        "Dream journal API with heuristic dream analysis",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(maintenanceCmd())
	root.AddCommand(analyzeCmd())
	return root
}

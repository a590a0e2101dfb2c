// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/procureflow/procureflow/internal/config"
)

var (
	cfg config.Config
	err error

	rootCmd = &cobra.Command{
		Use:   "procureflow",
		Short: "ProcureFlow is a web portal for procurement service requests",
		Long: `ProcureFlow is a web portal for procurement service requests
where employees submit purchase and service requests, the procurement
team reviews and approves them, and admins manage users and access.`,
		Args: cobra.OnlyValidArgs,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"averon/internal/interfaces/cli/migrate"
	"averon/internal/interfaces/cli/serve"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "averon",
		Short: "Averon - fleet synchronization and failover engine",
		Long:  `Averon keeps a fleet of remote VPN gateway panels synchronized, monitors their health, and migrates subscriptions away from servers that go down.`,
	}

	rootCmd.AddCommand(
		serve.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "mobility-admin",
		Short:        "Maintenance commands for the mobility rental backend",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "config/config.dev.yaml", "Path to configuration file (empty for environment only)")

	rootCmd.AddCommand(
		migrateCmd(),
		inventoryCmd(),
		reportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

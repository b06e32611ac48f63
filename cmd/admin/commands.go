package main

import (
	"database/sql"
	"fmt"
	"os"

	"mobility-rental-backend/internal/config"
	"mobility-rental-backend/internal/logger"
	"mobility-rental-backend/internal/repository/postgres"
	"mobility-rental-backend/internal/service"

	"github.com/spf13/cobra"
)

// connect loads configuration and opens the database for a command.
func connect(cmd *cobra.Command) (*config.Config, *sql.DB, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	db, err := postgres.Open(cmd.Context(), cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	run := func(apply func(cmd *cobra.Command, db *sql.DB) error) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			_, db, err := connect(cmd)
			if err != nil {
				return err
			}
			defer db.Close()
			return apply(cmd, db)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: run(func(cmd *cobra.Command, db *sql.DB) error {
				return postgres.Migrate(cmd.Context(), db)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show which migrations are applied",
			RunE: run(func(cmd *cobra.Command, db *sql.DB) error {
				return postgres.MigrationStatus(cmd.Context(), db)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert the most recent migration",
			RunE: run(func(cmd *cobra.Command, db *sql.DB) error {
				return postgres.Rollback(cmd.Context(), db)
			}),
		},
	)
	return cmd
}

func inventoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Import or export the device inventory as xlsx",
	}

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Load devices from an xlsx sheet with columns id, type, status, location",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			modeFlag, _ := cmd.Flags().GetString("mode")
			mode, err := service.ParseImportMode(modeFlag)
			if err != nil {
				return err
			}

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", file, err)
			}
			defer f.Close()

			_, db, err := connect(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			importer := service.NewImportService(service.NewInventoryService(postgres.NewStore(db)))
			n, err := importer.ImportInventory(cmd.Context(), f, mode)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d devices (%s)\n", n, mode)
			return nil
		},
	}
	importCmd.Flags().String("file", "", "Path to the xlsx file")
	importCmd.Flags().String("mode", string(service.ImportInsert), "insert, upsert or replace")
	_ = importCmd.MarkFlagRequired("file")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current inventory in the import layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			_, db, err := connect(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			devices, err := service.NewInventoryService(postgres.NewStore(db)).ListAll(cmd.Context())
			if err != nil {
				return err
			}
			return writeFile(out, func(f *os.File) error {
				return service.WriteInventoryTemplate(devices, f)
			})
		},
	}
	exportCmd.Flags().String("out", "inventory.xlsx", "Output path")

	cmd.AddCommand(importCmd, exportCmd)
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Daily reports",
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the reservations and rentals of a day to xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			out, _ := cmd.Flags().GetString("out")

			cfg, db, err := connect(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			store := postgres.NewStore(db)
			clock := service.NewClock(cfg.Location())
			if date == "" {
				date = clock.DefaultDate()
			}
			if out == "" {
				out = fmt.Sprintf("rentals-%s.xlsx", date)
			}
			reports := service.NewReportService(
				service.NewReservationService(store, clock),
				service.NewRentalService(store, clock),
			)
			return writeFile(out, func(f *os.File) error {
				return reports.ExportDay(cmd.Context(), date, f)
			})
		},
	}
	exportCmd.Flags().String("date", "", "Day to export as YYYY-MM-DD (default: today within the event)")
	exportCmd.Flags().String("out", "", "Output path (default: rentals-<date>.xlsx)")

	cmd.AddCommand(exportCmd)
	return cmd
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

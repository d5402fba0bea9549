package main

import (
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/freightdesk/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMigration(cmd, (*database.Migrator).Up)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMigration(cmd, (*database.Migrator).Down)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runMigration(cmd *cobra.Command, step func(*database.Migrator) error) error {
	e, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer e.close()

	m, err := database.NewMigrator(e.db, e.log.Named("migrate"))
	if err != nil {
		return err
	}

	return step(m)
}

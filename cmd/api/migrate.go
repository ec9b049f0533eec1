package main

import (
	"github.com/spf13/cobra"

	"doctrack/internal/database"
	"doctrack/internal/database/migration"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema and exit",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		cfg, l, err := bootstrap()
		if err != nil {
			return err
		}
		defer l.Sync() //nolint:errcheck

		db, err := database.NewPostgres(c.Context(), cfg.Database, l)
		if err != nil {
			return err
		}
		defer db.Close()

		return migration.EnsureMigrated(c.Context(), db, l)
	},
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storefront/internal/platform/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, db, err := openStore(cmd.Context())
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer database.Close(db)

		if err := store.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("schema up to date")
		return nil
	},
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply (or with --down, drop) the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()

		if migrateDown {
			if err := db.MigrateDown(); err != nil {
				return fmt.Errorf("migrate down: %w", err)
			}
			log.Info().Msg("Schema dropped")
			return nil
		}

		if err := db.RunMigrations(); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		log.Info().Msg("Schema is up to date")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "roll the schema back")
}

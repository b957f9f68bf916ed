package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations (postgres) or ensure indexes (mongo), then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		store, err := openStorage(cmd.Context(), cfg, logger, true)
		if err != nil {
			return err
		}
		store.close()
		return nil
	},
}

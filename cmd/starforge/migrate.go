package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voidreach/starforge/internal/config"
	"github.com/voidreach/starforge/internal/store"
)

// migrateCmd opens the configured database and runs GORM auto-migration,
// then exits. store.Open already auto-migrates on every call, so this
// is mostly useful for provisioning a fresh DB file before the first
// `serve` run, or for confirming the schema applies cleanly after a
// models.go change.
func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if _, err := store.Open(cfg.DBPath); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Printf("database %s is up to date\n", cfg.DBPath)
			return nil
		},
	}
}

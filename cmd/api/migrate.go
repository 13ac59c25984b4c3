package main

import (
	"fmt"

	"iaction/internal/config"
	"iaction/internal/infra/db"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the orders, payments and audit_logs tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			gormDB, err := db.Connect(cfg)
			if err != nil {
				return fmt.Errorf("connect db: %w", err)
			}
			if err := db.Migrate(gormDB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration completed")
			return nil
		},
	}
}

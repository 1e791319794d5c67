package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"mylibrary-rental/internal/db"
	"mylibrary-rental/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back database schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(conn *sqlx.DB) error {
			if err := db.Migrate(conn); err != nil {
				return err
			}
			versions, err := db.AppliedVersions(conn)
			if err != nil {
				return err
			}
			logger.Info("Database schema is up to date", "applied_versions", versions)
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recently applied migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), db.RollbackLast)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

func withDatabase(ctx context.Context, fn func(conn *sqlx.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// Migrations are driven explicitly here, never implicitly on open.
	cfg.Database.AutoMigrate = false
	conn, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := fn(conn); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

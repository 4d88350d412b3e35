package main

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/lib/pq" // postgres driver
	"github.com/spf13/cobra"

	"github.com/netolib/library-service/internal/config"
)

//go:embed schema.sql
var schemaSQL string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer func() { _ = db.Close() }()

		if _, err := db.ExecContext(cmd.Context(), schemaSQL); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "schema applied")

		return nil
	},
}

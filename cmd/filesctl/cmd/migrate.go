package cmd

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/filesmanager/internal/db"
)

func MigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back SQL schema migrations",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd, db.RunMigrations)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd, db.MigrateDown)
		},
	})

	return migrateCmd
}

func migrate(cmd *cobra.Command, step func(database *sql.DB, driver string) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "pgx" {
		return fmt.Errorf("DB_DRIVER=%s has no schema migrations", cfg.DBDriver)
	}

	database, err := db.Init(cmd.Context(), cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer database.Close()

	return step(database.DB, cfg.DBDriver)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pgstore "github.com/dropDatabas3/idlink/internal/store/pg"
)

// NewMigrateCmd crea el subcomando migrate (up | down | version).
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}
	cmd.AddCommand(
		migrateSub("up", "Apply all pending migrations", func(m *pgstore.Migrator, cmd *cobra.Command) error {
			if err := m.Up(); err != nil {
				return err
			}
			cmd.Println("migrations applied")
			return nil
		}),
		migrateSub("down", "Revert all migrations", func(m *pgstore.Migrator, cmd *cobra.Command) error {
			if err := m.Down(); err != nil {
				return err
			}
			cmd.Println("migrations reverted")
			return nil
		}),
		migrateSub("version", "Print the current schema version", func(m *pgstore.Migrator, cmd *cobra.Command) error {
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			cmd.Printf("version=%d dirty=%t\n", v, dirty)
			return nil
		}),
	)
	return cmd
}

func migrateSub(use, short string, run func(*pgstore.Migrator, *cobra.Command) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != "postgres" {
				return fmt.Errorf("migrate: storage.driver is %q, want postgres", cfg.Storage.Driver)
			}
			m, err := pgstore.NewMigrator(cfg.Storage.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()
			return run(m, cmd)
		},
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bluebuchu/collect-sub000/internal/adapter/postgres"
	"github.com/bluebuchu/collect-sub000/migrations"
)

func newMigrateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the PostgreSQL schema",
	}

	run := func(op func(context.Context, *postgres.Migrator) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			if c.cfg.Database.DSN == "" {
				return fmt.Errorf("database.dsn is required")
			}
			m, err := postgres.NewMigrator(c.cfg.Database.DSN, migrations.FS)
			if err != nil {
				return err
			}
			defer m.Close()
			return op(cmd.Context(), m)
		}
	}

	report := func(results []postgres.MigrationResult, verb string) {
		if len(results) == 0 {
			fmt.Fprintln(c.out, "no migrations to "+verb)
			return
		}
		for _, r := range results {
			fmt.Fprintf(c.out, "%s %d %s (%s)\n", verb, r.Version, r.Source, r.Duration)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: run(func(ctx context.Context, m *postgres.Migrator) error {
				res, err := m.Up(ctx)
				if err != nil {
					return err
				}
				report(res, "apply")
				c.logger.Info("migrations applied", slog.Int("count", len(res)))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: run(func(ctx context.Context, m *postgres.Migrator) error {
				res, err := m.Down(ctx)
				if err != nil {
					return err
				}
				report(res, "rollback")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: run(func(ctx context.Context, m *postgres.Migrator) error {
				v, err := m.Version(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "schema version %d\n", v)
				return nil
			}),
		},
	)
	return cmd
}

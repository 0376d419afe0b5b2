package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"transcript-analyzer/internal/shared/storage/db"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations for the configured SQL backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			var (
				dialect db.Dialect
				dsn     string
				dbOpts  = db.DefaultMigrateOptions()
			)
			switch cfg.RepoBackend {
			case "postgres":
				dialect, dsn = db.Postgres, cfg.DatabaseURL
			case "sqlite":
				dialect, dsn, dbOpts = db.SQLite, cfg.SQLitePath, db.SQLiteOptions()
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "backend %s has no schema; nothing to migrate\n", cfg.RepoBackend)
				return nil
			}

			sqlDB, err := db.Connect(ctx, dialect, dsn, dbOpts)
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
				return err
			}
			version, err := db.MigrationVersion(sqlDB, dialect)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s schema at version %d\n", colorGreen.Sprint("ok"), dialect, version)
			return nil
		},
	}
}

package main

// Run database migrations for the configured SQL backend:
//   go run ./cmd/migrate

import (
	"context"
	"log"
	"os"

	"transcript-analyzer/internal/shared/config"
	"transcript-analyzer/internal/shared/storage/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	ctx := context.Background()

	var (
		dialect db.Dialect
		dsn     string
		opts    = db.OptionsFromEnv(db.DefaultMigrateOptions())
	)
	switch cfg.RepoBackend {
	case "postgres":
		dialect, dsn = db.Postgres, cfg.DatabaseURL
	case "sqlite":
		dialect, dsn = db.SQLite, cfg.SQLitePath
		opts = db.SQLiteOptions()
	default:
		log.Printf("REPO_BACKEND=%s has no schema; nothing to migrate", cfg.RepoBackend)
		return
	}

	sqlDB, err := db.Connect(ctx, dialect, dsn, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
	version, err := db.MigrationVersion(sqlDB, dialect)
	if err != nil {
		log.Printf("failed to read migration version: %v", err)
		os.Exit(1)
	}
	log.Printf("migrations applied dialect=%s version=%d", dialect, version)
}

package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS

// goose keeps dialect and filesystem in package globals.
var gooseMu sync.Mutex

// RunMigrations applies the embedded goose migrations for the dialect.
// A nil database is a no-op.
func RunMigrations(ctx context.Context, database *sql.DB, dialect Dialect) error {
	if database == nil {
		return nil
	}
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := prepareGoose(dialect); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, database, migrationsDir(dialect)); err != nil {
		return fmt.Errorf("apply %s migrations: %w", dialect, err)
	}
	return nil
}

// MigrationVersion reports the highest applied migration version.
func MigrationVersion(database *sql.DB, dialect Dialect) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := prepareGoose(dialect); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(database)
}

func prepareGoose(dialect Dialect) error {
	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(goose.NopLogger())
	gooseDialect := "postgres"
	if dialect == SQLite {
		gooseDialect = "sqlite3"
	}
	return goose.SetDialect(gooseDialect)
}

func migrationsDir(dialect Dialect) string {
	return "migrations/" + string(dialect)
}

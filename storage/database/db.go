package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/trezcool/goose"
	_ "modernc.org/sqlite"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/fs"
)

// driverNames maps backend drivers to database/sql driver names.
var driverNames = map[string]string{
	core.DriverPostgres: "postgres",
	core.DriverSQLite:   "sqlite",
}

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Open connects to the SQL database configured by conf.Backend.
func Open(conf *core.Config) (*sqlx.DB, error) {
	driverName, ok := driverNames[conf.Backend.Driver]
	if !ok {
		return nil, errors.Errorf("unsupported SQL driver %q", conf.Backend.Driver)
	}
	db, err := sqlx.Open(driverName, conf.Backend.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if driverName == "sqlite" {
		// a single connection keeps ":memory:" databases alive and serializes writes
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// Ping waits for the database to be ready. Waits 100ms longer between each attempt.
func Ping(ctx context.Context, db *sqlx.DB, maxAttempts int) error {
	var err error
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
	return errors.Wrap(err, "DB ping timeout")
}

// gooseDialects maps database/sql driver names to goose dialects.
var gooseDialects = map[string]string{
	"postgres": "postgres",
	"sqlite":   "sqlite3",
}

// RunMigrations runs a goose command (up, down, status, version...) with the
// embedded migrations of the database's driver.
func RunMigrations(command string, db *sqlx.DB, args ...string) error {
	dialect, ok := gooseDialects[db.DriverName()]
	if !ok {
		return errors.Errorf("unsupported SQL driver %q", db.DriverName())
	}
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.RunFS(command, db.DB, appfs.FS, "migrations/"+db.DriverName(), args...)
}

// Migrate applies the pending migrations.
func Migrate(db *sqlx.DB) error {
	if err := RunMigrations("up", db); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

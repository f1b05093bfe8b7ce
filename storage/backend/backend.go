// Package backend opens the record backend selected by the configuration.
package backend

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/school"
	"github.com/trezcool/scorebook/storage/database"
	inmemdb "github.com/trezcool/scorebook/storage/database/inmem"
	sqlxrepos "github.com/trezcool/scorebook/storage/database/sqlx"
	restrepo "github.com/trezcool/scorebook/storage/rest"
)

// Backend is the record backend the statistics are loaded from.
// DB is nil unless the driver is a SQL one.
type Backend struct {
	Repository school.Repository
	DB         *sqlx.DB
}

// Close releases the SQL connection, if any.
func (b Backend) Close() error {
	if b.DB == nil {
		return nil
	}
	return b.DB.Close()
}

// Open sets up the repository of conf.Backend.Driver.
// SQL databases are pinged and migrated; the memory store is seeded from conf.Backend.SeedFile when set.
func Open(ctx context.Context, conf *core.Config) (Backend, error) {
	switch conf.Backend.Driver {
	case core.DriverREST:
		return Backend{Repository: restrepo.NewRepository(conf)}, nil

	case core.DriverMemory:
		db := inmemdb.Open()
		if conf.Backend.SeedFile != "" {
			if err := db.SeedFile(conf.Backend.SeedFile); err != nil {
				return Backend{}, err
			}
		}
		return Backend{Repository: inmemdb.NewSchoolRepository(db)}, nil

	case core.DriverPostgres, core.DriverSQLite:
		db, err := database.Open(conf)
		if err != nil {
			return Backend{}, err
		}
		if err = database.Ping(ctx, db, 10); err != nil {
			_ = db.Close()
			return Backend{}, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return Backend{}, err
		}
		return Backend{Repository: sqlxrepos.NewSchoolRepository(db), DB: db}, nil

	default:
		return Backend{}, errors.Errorf("unknown backend driver %q", conf.Backend.Driver)
	}
}

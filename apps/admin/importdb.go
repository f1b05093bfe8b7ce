package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/core/school"
	"github.com/trezcool/scorebook/storage/database"
	sqlxrepos "github.com/trezcool/scorebook/storage/database/sqlx"
)

var errNoSQLBackend = errors.New("importdb needs a postgres or sqlite backend")

// importDB copies the collections of a db.json file into the SQL database.
func (cli *commandLine) importDB(ctx context.Context, path string) error {
	if cli.db == nil {
		return errNoSQLBackend
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading import file")
	}
	c, err := school.DecodeCollections(data)
	if err != nil {
		return err
	}
	if err := database.Migrate(cli.db); err != nil {
		return err
	}
	if err := sqlxrepos.Import(ctx, cli.db, c); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "imported %d students, %d subjects, %d score rows and %d classes\n",
		len(c.Students), len(c.Subjects), len(c.StudentScores), len(c.Classes))
	return nil
}

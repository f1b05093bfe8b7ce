package main

import (
	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/storage/database"
)

var errNoMigrationsBackend = errors.New("migrate needs a postgres or sqlite backend")

var migrationsRunFunc = database.RunMigrations // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoMigrationsBackend
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return migrationsRunFunc(args[0], cli.db, arguments...)
}

package main

import (
	"context"

	"github.com/trezcool/coachdesk/storage/postgres"
)

var migrateFunc = postgres.RunMigrations // mockable

func (cli *commandLine) migrate(args []string) error {
	return migrateFunc(context.Background(), cli.db, args[0], args[1:]...)
}

package main

import (
	"github.com/trezcool/goose"

	"github.com/darasahq/darasa/core"
	appfs "github.com/darasahq/darasa/fs"
	"github.com/darasahq/darasa/storage/database"
)

var gooseRunFunc = goose.RunFS // mockable

func (cli *commandLine) migrate(args []string) error {
	command, rest := args[0], args[1:]
	return gooseRunFunc(command, cli.db.DB, appfs.FS, "migrations", rest...)
}

func (cli *commandLine) createDB() error {
	return database.CreateIfNotExist(core.Conf)
}

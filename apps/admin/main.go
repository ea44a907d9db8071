package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coachdesk/core"
	"github.com/trezcool/coachdesk/core/admin"
	emailsvc "github.com/trezcool/coachdesk/services/email"
	logsvc "github.com/trezcool/coachdesk/services/logger"
	"github.com/trezcool/coachdesk/storage/mongodb"
	"github.com/trezcool/coachdesk/storage/postgres"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(err)

	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	admin.InitValidators(validate, translator)

	cli := commandLine{conf: conf, validate: validate}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		db, err := postgres.Open(conf)
		errAndDie(err)
		defer db.Close()
		cli.db = db.DB
	} else if len(os.Args) > 1 {
		db, err := mongodb.Open(ctx, conf)
		errAndDie(err)
		defer func() { _ = db.Close(context.Background()) }()
		errAndDie(db.EnsureIndexes(ctx))

		appLogger := logsvc.NewRollbarLogger(logger, conf)
		appLogger.Enable(!conf.Debug)
		mailSvc := emailsvc.NewConsoleService(conf, appLogger)
		cli.adminSvc = admin.NewService(mongodb.NewAdminRepository(db), mailSvc, conf)
	}

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

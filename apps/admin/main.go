package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/statistic"
	logsvc "github.com/trezcool/scorebook/services/logger"
	"github.com/trezcool/scorebook/storage/backend"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up backend
	b, err := backend.Open(context.Background(), conf)
	errAndDie(err)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	statistic.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		svc:        statistic.NewService(b.Repository, conf, logsvc.NewConsoleLogger(logger)),
		db:         b.DB,
		validate:   validate,
		translator: translator,
		out:        os.Stdout,
	}
	err = cli.run(context.Background(), os.Args)
	_ = b.Close()
	if err != nil {
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

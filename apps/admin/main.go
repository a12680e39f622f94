package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/user"
	logsvc "github.com/tutorly/tutorly/services/logger"
	"github.com/tutorly/tutorly/services/realtime"
	"github.com/tutorly/tutorly/storage/database"
	"github.com/tutorly/tutorly/storage/database/sqlxrepos"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug)

	// set up DB
	if conf.Database.Engine != database.EngineSQLite {
		if err := database.CreateIfNotExist(conf); err != nil {
			logger.Fatal("Failed to create database", err)
		}
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("Failed to open database", err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// the CLI has no realtime clients
	hub := realtime.NewHub(logger)

	cli := commandLine{
		db:       db,
		engine:   conf.Database.Engine,
		validate: validate,
		usrSvc:   user.NewService(sqlxrepos.NewUserRepository(db), db, hub),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("Command failed", err)
		}
		os.Exit(1)
	}
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	echoapi "github.com/darasahq/darasa/apps/api/echo"
	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/lecture"
	"github.com/darasahq/darasa/core/user"
	emailsvc "github.com/darasahq/darasa/services/email"
	logsvc "github.com/darasahq/darasa/services/logger"
	storagesvc "github.com/darasahq/darasa/services/storage"
	"github.com/darasahq/darasa/storage/database"
	sqlxrepos "github.com/darasahq/darasa/storage/database/sqlx"
)

func main() {
	wd, err := os.Getwd()
	errAndDie(err)
	core.LoadConf(wd)

	std := log.New(os.Stdout, core.Conf.AppName+" API : ", log.LstdFlags|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, core.Conf)
	logger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc)
	lectSvc := lecture.NewService(sqlxrepos.NewLectureRepository(db))

	// set up API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:       core.Conf.Server.Addr,
			Logger:     logger,
			UserSvc:    usrSvc,
			LectureSvc: lectSvc,
			Storage:    storagesvc.NewDiskService(),
			Shutdown:   func() { shutdown <- syscall.SIGSTOP },
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting API server at " + core.Conf.Server.Addr)
		app.Start()
		serverErrors <- nil
	}()

	// block waiting for shutdown
	select {
	case err := <-serverErrors:
		if err != nil {
			logger.Fatal("server error", err)
		}
	case sig := <-shutdown:
		logger.Info("shutdown started", map[string]interface{}{"signal": sig.String()})

		ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
		defer cancel()

		if err := app.Stop(ctx); err != nil {
			logger.Error("could not stop server gracefully", err)
		}
		logger.Info("shutdown complete")
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

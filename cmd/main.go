package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/bistro/config"
	"github.com/ray-remotestate/bistro/database"
	"github.com/ray-remotestate/bistro/database/dbhelper"
	"github.com/ray-remotestate/bistro/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config.Init()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	if err := database.ConnectAndMigrate(); err != nil {
		logrus.Panicf("failed to initialize database, error: %v", err)
	}

	if err := dbhelper.SeedAdmin(config.AdminUsername, config.AdminPassword); err != nil {
		logrus.Panicf("failed to seed admin user, error: %v", err)
	}

	svr := server.SetupRoutes()
	svr.MarkReady()

	go func() {
		logrus.WithField("port", config.ServerPort).Info("starting server")
		if err := svr.Run(config.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	<-done
	logrus.Info("shutting down...")

	var result *multierror.Error
	if err := svr.Shutdown(shutdownTimeout); err != nil {
		result = multierror.Append(result, err)
	}
	if err := database.ShutdownDatabase(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		logrus.WithError(err).Error("shutdown finished with errors")
		os.Exit(1)
	}

	logrus.Info("shutdown complete")
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	echodevapi "github.com/trezcool/masomo-portal/apps/devapi/echo"
	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/records"
	"github.com/trezcool/masomo-portal/core/user"
	logsvc "github.com/trezcool/masomo-portal/services/logger"
	inmemdb "github.com/trezcool/masomo-portal/storage/database/inmem"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DEVAPI : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	db := inmemdb.OpenWith(records.Seed())

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	usrSvc := user.NewService(inmemdb.NewUserRepository(db), validate)
	if err := usrSvc.SeedDemoAccounts(); err != nil {
		logger.Fatal(fmt.Sprintf("seeding demo accounts: %v", err), err)
	}

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start API Service

	server := echodevapi.NewServer(echodevapi.Deps{
		Conf:       conf,
		Logger:     logger,
		Users:      usrSvc,
		Catalog:    db.Catalog(),
		Validate:   validate,
		Translator: translator,
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof on the default mux
	"os"

	"github.com/redis/go-redis/v9"

	echoportal "github.com/trezcool/masomo-portal/apps/portal/echo"
	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/auth"
	"github.com/trezcool/masomo-portal/core/policy"
	logsvc "github.com/trezcool/masomo-portal/services/logger"
	"github.com/trezcool/masomo-portal/services/recordsapi"
	"github.com/trezcool/masomo-portal/storage/sessionstore"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "PORTAL : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	sessions, closeSessions := newSessionBackend(conf, logger)
	defer closeSessions()

	client := recordsapi.NewClient(conf.Portal.APIBaseURL, conf.Portal.APITimeout)

	validate, translator := core.NewValidator()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Portal Service

	server, err := echoportal.NewServer(echoportal.Deps{
		Conf:       conf,
		Logger:     logger,
		Sessions:   sessions,
		Auth:       auth.NewAuthenticator(client, validate, logger),
		Policy:     policy.New(logger),
		Catalog:    recordsapi.NewCatalog(client),
		Validate:   validate,
		Translator: translator,
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up server: %v", err), err)
	}

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// newSessionBackend returns the Redis backend when an address is configured, else the memory one.
func newSessionBackend(conf *core.Config, logger core.Logger) (sessionstore.Backend, func()) {
	if conf.Redis.Addr == "" {
		logger.Warn("redis.addr not set: sessions are kept in memory")
		return sessionstore.NewMemoryBackend(), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
	}
	closeFn := func() {
		if err := rdb.Close(); err != nil {
			logger.Error("closing redis client", err)
		}
	}
	return sessionstore.NewRedisBackend(rdb, conf.Redis.Prefix, conf.Portal.SessionTTL), closeFn
}

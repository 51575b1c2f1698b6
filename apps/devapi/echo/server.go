package echodevapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/records"
	"github.com/trezcool/masomo-portal/core/user"
)

type (
	Deps struct {
		Conf       *core.Config
		Logger     core.Logger
		Users      *user.Service
		Catalog    records.Catalog
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		Deps
		app       *echo.Echo
		jwtConfig middleware.JWTConfig
		errors    chan error
		shutdown  chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps Deps) Server {
	if deps.Logger == nil {
		deps.Logger = core.NopLogger
	}
	s := &server{
		Deps:      deps,
		app:       echo.New(),
		jwtConfig: newJWTConfig(deps.Conf.DevAPI.SecretKey),
		errors:    make(chan error, 1),
		shutdown:  make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Debug = s.Conf.Debug
	s.app.HideBanner = true
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.Translator, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.Conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.Conf.Debug || s.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.GET("/", home)

	v1 := s.app.Group("/api/v1")
	jwt := middleware.JWTWithConfig(s.jwtConfig)

	registerAuthAPI(v1, s)

	registerResource(v1, jwt, s, records.StudentsResource, records.StudentsScreen(), s.Catalog.Students)
	registerResource(v1, jwt, s, records.StaffResource, records.StaffScreen(), s.Catalog.Staff)
	registerResource(v1, jwt, s, records.LecturersResource, records.LecturersScreen(), s.Catalog.Lecturers)
	registerResource(v1, jwt, s, records.LecturesResource, records.LecturesScreen(), s.Catalog.Lectures)
	registerResource(v1, jwt, s, records.SubjectsResource, records.SubjectsScreen(), s.Catalog.Subjects)
	registerResource(v1, jwt, s, records.MarksResource, records.MarksScreen(), s.Catalog.Marks)
}

func (s *server) Start() {
	if err := s.app.Start(s.Conf.DevAPI.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the Masomo records API!")
}

package echoportal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/auth"
	"github.com/trezcool/masomo-portal/core/policy"
	"github.com/trezcool/masomo-portal/core/records"
	"github.com/trezcool/masomo-portal/storage/sessionstore"
)

type (
	Deps struct {
		Conf       *core.Config
		Logger     core.Logger
		Sessions   sessionstore.Backend
		Auth       *auth.Authenticator
		Policy     *policy.Policy
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
		app      *echo.Echo
		limiter  *loginLimiter
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps Deps) (Server, error) {
	if deps.Logger == nil {
		deps.Logger = core.NopLogger
	}
	rndr, err := newRenderer()
	if err != nil {
		return nil, err
	}

	s := &server{
		Deps:     deps,
		app:      echo.New(),
		limiter:  newLoginLimiter(deps.Conf.Portal.LoginRate, deps.Conf.Portal.LoginBurst),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	s.app.Renderer = rndr
	s.setup()
	return s, nil
}

func (s *server) setup() {
	s.app.Debug = s.Conf.Debug
	s.app.HideBanner = true
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.signalShutdown)
	s.app.IPExtractor = echo.ExtractIPDirect()
	if s.Conf.Portal.TrustProxy {
		s.app.IPExtractor = echo.ExtractIPFromXFFHeader()
	}

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.Conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.Conf.Debug || s.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(s.sessionMiddleware)
	s.app.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:" + csrfField,
		ContextKey:     contextCSRFKey,
		CookieName:     csrfCookie,
		CookiePath:     "/",
		CookieMaxAge:   int(s.Conf.Portal.SessionTTL / time.Second),
		CookieSecure:   s.Conf.Portal.SecureCookies,
		CookieHTTPOnly: true,
	}))

	// public pages
	s.app.GET(policy.LoginRoute, s.loginPage)
	s.app.POST(policy.LoginRoute, s.login)
	s.app.POST(policy.LogoutRoute, s.logout)
	s.app.GET(policy.SignupRoute, s.signupPage)
	s.app.POST(policy.SignupRoute, s.signup)

	// guarded pages
	g := s.app.Group("", s.guardMiddleware)
	registerDashboards(g, s)

	registerScreen(g, s, records.StudentsScreen(), s.Catalog.Students, nil)
	registerScreen(g, s, records.StaffScreen(), s.Catalog.Staff, nil)
	registerScreen(g, s, records.LecturersScreen(), s.Catalog.Lecturers, nil)
	registerScreen(g, s, records.LecturesScreen(), s.Catalog.Lectures, nil)
	registerScreen(g, s, records.SubjectsScreen(), s.Catalog.Subjects, nil)
	registerScreen(g, s, records.MarksScreen(), s.Catalog.Marks, func(marks []records.Mark) interface{} {
		return records.SummarizeMarks(marks)
	})

	// after the guarded group, whose catch-all routes would otherwise take "/"
	s.app.GET("/", home)
}

func (s *server) Start() {
	if err := s.app.Start(s.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
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
	default: // already signalled
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.Redirect(http.StatusFound, policy.DashboardRoute)
}

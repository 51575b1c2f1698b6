package echoportal

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/auth"
	"github.com/trezcool/masomo-portal/core/policy"
	"github.com/trezcool/masomo-portal/core/session"
)

type (
	loginForm struct {
		Email    string `form:"email"`
		Password string `form:"password"`
		Next     string `form:"next" query:"next"`
	}

	loginView struct {
		Email string
		Next  string
	}

	signupView struct {
		Account auth.NewAccount
		Errors  map[string]string
		Roles   []string
	}
)

// roles offered by the signup form
var signupRoles = []string{"student", "teacher", "admin"}

func (s *server) loginPage(ctx echo.Context) error {
	next := ctx.QueryParam("next")
	if contextStore(ctx).IsAuthenticated() {
		return ctx.Redirect(http.StatusFound, core.LocalPath(next, policy.DashboardRoute))
	}
	return s.render(ctx, http.StatusOK, "login", page{Title: "Sign in", Data: loginView{Next: next}})
}

func (s *server) login(ctx echo.Context) error {
	var form loginForm
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding to loginForm")
	}
	view := loginView{Email: form.Email, Next: form.Next}

	if !s.limiter.Allow(ctx.RealIP()) {
		s.Logger.Warn("login throttled", map[string]interface{}{"ip": ctx.RealIP(), "email": form.Email})
		return s.render(ctx, http.StatusTooManyRequests, "login", page{Title: "Sign in", Error: msgTooManyLogins, Data: view})
	}

	// sign in under a fresh sid; the one the browser came with is dropped
	reqCtx := ctx.Request().Context()
	sid := uuid.NewString()
	store := session.NewStore(s.Sessions.For(sid), s.Logger)

	_, err := s.Auth.Login(reqCtx, store, form.Email, form.Password)
	if err != nil {
		var lErr *auth.LoginError
		if !errors.As(err, &lErr) {
			return errors.Wrap(err, "logging in")
		}
		code := http.StatusUnauthorized
		if lErr.Kind == auth.ErrInvalidResponseShape {
			code = http.StatusBadGateway
		}
		return s.render(ctx, code, "login", page{Title: "Sign in", Error: auth.UserMessage(err), Data: view})
	}

	if err = contextStore(ctx).Clear(reqCtx); err != nil {
		s.Logger.Error("dropping previous session", err)
	}
	ctx.Set(contextStoreKey, store)
	s.setSessionCookie(ctx, sid)
	return ctx.Redirect(http.StatusFound, core.LocalPath(form.Next, policy.DashboardRoute))
}

func (s *server) logout(ctx echo.Context) error {
	if err := s.Auth.Logout(ctx.Request().Context(), contextStore(ctx)); err != nil {
		s.Logger.Error("logging out", err)
	}
	return ctx.Redirect(http.StatusFound, policy.LoginRoute)
}

func (s *server) signupPage(ctx echo.Context) error {
	return s.render(ctx, http.StatusOK, "signup", page{
		Title: "Create an account",
		Data:  signupView{Account: auth.NewAccount{Role: "student"}, Roles: signupRoles},
	})
}

func (s *server) signup(ctx echo.Context) error {
	var account auth.NewAccount
	if err := ctx.Bind(&account); err != nil {
		return errors.Wrap(err, "binding to NewAccount")
	}

	msg, err := s.Auth.Register(ctx.Request().Context(), account)
	if err != nil {
		account.Password, account.ConfirmPassword = "", ""
		view := signupView{Account: account, Roles: signupRoles}
		p := page{Title: "Create an account", Data: &view}

		if view.Errors = core.FieldMessages(err, s.Translator); view.Errors != nil {
			if vErr, ok := errors.Cause(err).(*core.ValidationError); ok && len(vErr.Fields) == 0 {
				p.Error = vErr.Error()
			}
			return s.render(ctx, http.StatusBadRequest, "signup", p)
		}

		s.Logger.Error("registering account", err, map[string]interface{}{"email": account.Email})
		p.Error = msgSignupFailed
		return s.render(ctx, http.StatusBadGateway, "signup", p)
	}

	setFlash(ctx, msg+" Please sign in.")
	return ctx.Redirect(http.StatusFound, policy.LoginRoute)
}

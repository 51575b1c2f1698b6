package echoportal

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-portal/core/policy"
	"github.com/trezcool/masomo-portal/core/records"
	"github.com/trezcool/masomo-portal/core/session"
	"github.com/trezcool/masomo-portal/services/recordsapi"
)

const retryAfterSeconds = "1"

// guardMiddleware lets a request through only when its session is authenticated and
// the path is reachable for the role. The request context then carries the records API
// token, and the echo context the chrome.
func (s *server) guardMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		store := contextStore(ctx)

		if ctx.Get(contextRestoreErrKey) != nil || store.State() == session.StateLoading {
			ctx.Response().Header().Set("Retry-After", retryAfterSeconds)
			return s.render(ctx, http.StatusServiceUnavailable, "loading", page{Title: "Loading"})
		}

		snap := store.Snapshot()
		if snap.State != session.StateAuthenticated || snap.Identity == nil || snap.Token == "" {
			return ctx.Redirect(http.StatusFound, loginURL(ctx.Request().RequestURI))
		}
		ident := *snap.Identity

		path := ctx.Request().URL.Path
		ctx.Set(contextChromeKey, s.chromeFor(ident, path))
		if !s.Policy.Reachable(ident.Role, path) {
			return s.render(ctx, http.StatusForbidden, "error", page{
				Title: "Forbidden",
				Data:  errorView{Code: http.StatusForbidden, Message: msgNotReachable},
			})
		}

		req := ctx.Request()
		ctx.SetRequest(req.WithContext(recordsapi.WithToken(req.Context(), snap.Token)))
		return next(ctx)
	}
}

// chromeFor builds the frame of `ident`: greeting, user menu and the navigation they may see.
func (s *server) chromeFor(ident session.Identity, path string) *chrome {
	items := s.Policy.NavigationFor(ident.Role)
	nav := make([]navLink, 0, len(items))
	for _, item := range items {
		href := item.Href(ident.Role)
		nav = append(nav, navLink{
			Name:   item.Name,
			Icon:   item.Icon,
			Href:   href,
			Active: path == href || strings.HasPrefix(path, href+"/"),
		})
	}
	return &chrome{
		Greeting:    records.Greeting(records.NowFunc().Hour()),
		DisplayName: ident.DisplayName(),
		FullName:    ident.FullName(),
		Email:       ident.Email,
		Role:        ident.Role,
		Nav:         nav,
	}
}

// forceLogin drops a session the records API no longer accepts and sends the user
// back to the login page, returning to `next` afterwards.
func (s *server) forceLogin(ctx echo.Context, next string) error {
	if store := contextStore(ctx); store != nil {
		if err := store.Clear(ctx.Request().Context()); err != nil {
			s.Logger.Error("clearing refused session", err)
		}
	}
	return ctx.Redirect(http.StatusFound, loginURL(next))
}

func loginURL(next string) string {
	if next == "" || next == "/" {
		return policy.LoginRoute
	}
	return policy.LoginRoute + "?next=" + url.QueryEscape(next)
}

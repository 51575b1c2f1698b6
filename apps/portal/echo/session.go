package echoportal

import (
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-portal/core/session"
)

const (
	contextStoreKey      = "session"
	contextRestoreErrKey = "sessionRestoreErr"
	contextChromeKey     = "chrome"
	contextCSRFKey       = "csrf"
	flashCookie          = "masomo_flash"
	csrfCookie           = "masomo_csrf"
	csrfField            = "_csrf"
)

// sessionMiddleware gives every request the Session Store of its browser, restored
// from the backend under the sid cookie. A missing or malformed sid gets a fresh one.
func (s *server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		sid := s.sessionID(ctx)

		store := session.NewStore(s.Sessions.For(sid), s.Logger)
		if err := store.Restore(ctx.Request().Context()); err != nil {
			s.Logger.Error("restoring session", err)
			ctx.Set(contextRestoreErrKey, err)
		}
		ctx.Set(contextStoreKey, store)
		return next(ctx)
	}
}

func (s *server) sessionID(ctx echo.Context) string {
	if cookie, err := ctx.Cookie(s.Conf.Portal.SessionCookie); err == nil {
		if _, err = uuid.Parse(cookie.Value); err == nil {
			return cookie.Value
		}
	}

	sid := uuid.NewString()
	s.setSessionCookie(ctx, sid)
	return sid
}

func (s *server) setSessionCookie(ctx echo.Context, sid string) {
	ctx.SetCookie(&http.Cookie{
		Name:     s.Conf.Portal.SessionCookie,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(s.Conf.Portal.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   s.Conf.Portal.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func contextCSRF(ctx echo.Context) string {
	token, _ := ctx.Get(contextCSRFKey).(string)
	return token
}

func contextStore(ctx echo.Context) *session.Store {
	store, _ := ctx.Get(contextStoreKey).(*session.Store)
	return store
}

func contextChrome(ctx echo.Context) *chrome {
	chrm, _ := ctx.Get(contextChromeKey).(*chrome)
	return chrm
}

// contextIdentity is the signed-in identity, if any; used to tag log entries.
func contextIdentity(ctx echo.Context) (session.Identity, bool) {
	if store := contextStore(ctx); store != nil {
		return store.Identity()
	}
	return session.Identity{}, false
}

// setFlash keeps `msg` for the next rendered page.
func setFlash(ctx echo.Context, msg string) {
	ctx.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func popFlash(ctx echo.Context) string {
	cookie, err := ctx.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}
	ctx.SetCookie(&http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})
	msg, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return msg
}

package echoportal

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/policy"
	"github.com/trezcool/masomo-portal/core/records"
)

var (
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "You do not have permission to do this.")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "Page not found.")
)

// User-displayable messages
const (
	msgTooManyLogins = "Too many login attempts. Please try again later."
	msgSignupFailed  = "Registration failed. Please try again."
	msgFetchFailed   = "Could not load %s. Please try again."
	msgSaveFailed    = "Could not save the %s. Please try again."
	msgDeleteFailed  = "Could not delete the %s. Please try again."
	msgNoPages       = policy.NoPagesMessage
	msgNotReachable  = "You do not have access to this page."
)

type errorView struct {
	Code    int
	Message string
}

// newAppHTTPErrorHandler returns an echo.HTTPErrorHandler rendering HTML error pages.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string

		cause := errors.Cause(err)
		if cause == records.ErrNotFound {
			cause = errHttpNotFound
		}

		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = fmt.Sprint(origErr.Message)
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(http.StatusInternalServerError)

			args := []interface{}{errors.Wrap(err, message)}
			if ident, ok := contextIdentity(ctx); ok {
				args = append(args, ident)
			}
			logger.Error(message, args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code >= http.StatusInternalServerError {
			message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.Render(code, "error", page{
					Title:  http.StatusText(code),
					Chrome: contextChrome(ctx),
					CSRF:   contextCSRF(ctx),
					Data:   errorView{Code: code, Message: message},
				})
				if err != nil {
					err = ctx.String(code, message)
				}
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

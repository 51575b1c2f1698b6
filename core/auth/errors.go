package auth

import (
	"github.com/pkg/errors"
)

var (
	// ErrAuthenticationFailed covers rejected credentials and an unreachable endpoint.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrInvalidResponseShape is a 2xx answer without a token or a usable user profile.
	ErrInvalidResponseShape = errors.New("invalid response shape")
)

// User-displayable messages
const (
	msgLoginFailed        = "Login failed"
	msgUnreachable        = "Unable to reach the authentication service"
	msgMissingCredentials = "Email and password are required"
	msgRegistrationFailed = "Registration failed. Please try again."
	msgRegistered         = "Registration successful."
)

// LoginError is returned by Authenticator.Login. Message is safe to show to the user;
// Kind is one of ErrAuthenticationFailed or ErrInvalidResponseShape.
type LoginError struct {
	Kind    error
	Message string
	Err     error
}

func (e *LoginError) Error() string {
	if e.Err != nil {
		return e.Kind.Error() + ": " + e.Err.Error()
	}
	return e.Kind.Error() + ": " + e.Message
}

func (e *LoginError) Cause() error  { return e.Kind }
func (e *LoginError) Unwrap() error { return e.Kind }

// UserMessage returns the displayable text carried by a *LoginError, or a generic one.
func UserMessage(err error) string {
	var lErr *LoginError
	if errors.As(err, &lErr) {
		return lErr.Message
	}
	return msgLoginFailed
}

func failed(msg string, err error) error {
	return &LoginError{Kind: ErrAuthenticationFailed, Message: msg, Err: err}
}

func badShape(err error) error {
	return &LoginError{Kind: ErrInvalidResponseShape, Message: msgLoginFailed, Err: err}
}

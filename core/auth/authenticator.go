// Package auth exchanges credentials for a session with the records API.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/session"
)

// API paths, relative to the records API root.
const (
	LoginPath    = "/Auth/login"
	RegisterPath = "/Auth/register"
)

// Poster sends an unauthenticated JSON request. Transport failures are errors;
// any HTTP status, including non-2xx, is returned as is.
type Poster interface {
	Post(ctx context.Context, path string, in interface{}) (status int, body []byte, err error)
}

type Authenticator struct {
	api      Poster
	validate *validator.Validate
	logger   core.Logger
}

func NewAuthenticator(api Poster, validate *validator.Validate, logger core.Logger) *Authenticator {
	if logger == nil {
		logger = core.NopLogger
	}
	return &Authenticator{api: api, validate: validate, logger: logger}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type loginResponse struct {
	Token string `json:"token"`
	User  *struct {
		ID        flexString `json:"id"`
		Email     string     `json:"email"`
		Username  string     `json:"username"`
		FirstName string     `json:"firstName"`
		LastName  string     `json:"lastName"`
		Role      string     `json:"role"`
	} `json:"user"`
}

// Login exchanges the credentials for a token and a profile and stores both in `store`.
// The store is left untouched on any failure. Failures of the exchange itself are *LoginError.
func (a *Authenticator) Login(ctx context.Context, store *session.Store, email, password string) (session.Identity, error) {
	email = core.CleanString(email)
	if email == "" || password == "" {
		return session.Identity{}, failed(msgMissingCredentials, nil)
	}

	ident, token, err := a.exchange(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidResponseShape) {
			a.logger.Warn(ErrInvalidResponseShape.Error(), err, map[string]interface{}{"email": email})
		} else {
			a.logger.Info(ErrAuthenticationFailed.Error(), err, map[string]interface{}{"email": email})
		}
		return session.Identity{}, err
	}

	if err = store.Set(ctx, ident, token); err != nil {
		return session.Identity{}, errors.Wrap(err, "storing session")
	}
	return ident, nil
}

func (a *Authenticator) exchange(ctx context.Context, email, password string) (session.Identity, string, error) {
	status, body, err := a.api.Post(ctx, LoginPath, credentials{Email: email, Password: password})
	if err != nil {
		return session.Identity{}, "", failed(msgUnreachable, err)
	}
	if !statusOK(status) {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = msgLoginFailed
		}
		return session.Identity{}, "", failed(msg, errors.Errorf("status %d", status))
	}

	var resp loginResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return session.Identity{}, "", badShape(errors.Wrap(err, "decoding login response"))
	}
	if resp.Token == "" || resp.User == nil {
		return session.Identity{}, "", badShape(errors.New("missing token or user in response"))
	}
	usr := resp.User
	if usr.ID == "" || strings.TrimSpace(usr.Role) == "" {
		return session.Identity{}, "", badShape(errors.New("missing user id or role in response"))
	}

	ident := session.Identity{
		ID:        string(usr.ID),
		Email:     usr.Email,
		FirstName: usr.FirstName,
		LastName:  usr.LastName,
		Role:      session.NormalizeRole(usr.Role),
	}
	if ident.FirstName == "" && ident.LastName == "" {
		ident.FirstName, ident.LastName = splitUsername(usr.Username)
	}
	return ident, resp.Token, nil
}

// splitUsername takes the first two space separated parts of `username`.
// "Jane" gives ("Jane", ""); "Mary Ann Lee" gives ("Mary", "Ann").
func splitUsername(username string) (first, last string) {
	if username == "" {
		return "", ""
	}
	parts := strings.Split(username, " ")
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}

// Logout clears the session locally; the API is not called.
func (a *Authenticator) Logout(ctx context.Context, store *session.Store) error {
	return errors.Wrap(store.Clear(ctx), "clearing session")
}

// NewAccount is the registration form.
type NewAccount struct {
	FirstName       string `json:"firstName" form:"firstName" validate:"notblank"`
	LastName        string `json:"lastName" form:"lastName" validate:"notblank"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" validate:"eqfield=Password"`
	Role            string `json:"role" form:"role" validate:"required,oneof=student teacher lecturer admin"`
	StudentID       string `json:"studentId,omitempty" form:"studentId" validate:"required_if=Role student"`
}

func (na *NewAccount) Clean() {
	na.FirstName = core.CleanString(na.FirstName)
	na.LastName = core.CleanString(na.LastName)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Role = core.CleanString(na.Role, true /* lower */)
	na.StudentID = core.CleanString(na.StudentID)
	if na.Role != string(session.RoleStudent) {
		na.StudentID = ""
	}
}

type registerResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// Register creates an account and returns the API's confirmation message.
// Invalid input is returned as validator.ValidationErrors; a refusal by the API as *core.ValidationError.
func (a *Authenticator) Register(ctx context.Context, account NewAccount) (string, error) {
	account.Clean()
	if err := a.validate.Struct(account); err != nil {
		return "", err
	}

	status, body, err := a.api.Post(ctx, RegisterPath, account)
	if err != nil {
		return "", errors.Wrap(err, "posting registration")
	}

	var resp registerResponse
	_ = json.Unmarshal(body, &resp)

	if !statusOK(status) {
		a.logger.Info("registration refused", map[string]interface{}{"email": account.Email, "status": status})
		return "", core.NewValidationError(errors.New(joinAPIErrors(resp.Errors)), apiFieldErrors(resp.Errors)...)
	}
	if resp.Message == "" {
		return msgRegistered, nil
	}
	return resp.Message, nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinAPIErrors(apiErrs map[string][]string) string {
	msgs := make([]string, 0, len(apiErrs))
	for _, field := range sortedKeys(apiErrs) {
		msgs = append(msgs, apiErrs[field]...)
	}
	if len(msgs) == 0 {
		return msgRegistrationFailed
	}
	return strings.Join(msgs, " ")
}

func apiFieldErrors(apiErrs map[string][]string) []core.FieldError {
	flds := make([]core.FieldError, 0, len(apiErrs))
	for _, field := range sortedKeys(apiErrs) {
		flds = append(flds, core.FieldError{Field: field, Error: strings.Join(apiErrs[field], " ")})
	}
	return flds
}

func statusOK(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

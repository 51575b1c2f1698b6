package echoportal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/auth"
	"github.com/trezcool/masomo-portal/core/policy"
	"github.com/trezcool/masomo-portal/core/records"
	"github.com/trezcool/masomo-portal/core/session"
	"github.com/trezcool/masomo-portal/storage/database/inmem"
	"github.com/trezcool/masomo-portal/storage/sessionstore"
	"github.com/trezcool/masomo-portal/tests/testutil"
)

const sidCookie = "masomo_sid"

var (
	admin    = session.Identity{ID: "1", Email: "admin@school.com", FirstName: "Jane", LastName: "Doe", Role: session.RoleAdmin}
	lecturer = session.Identity{ID: "2", Email: "lecturer@school.com", FirstName: "Sarah", LastName: "Johnson", Role: session.RoleLecturer}
	student  = session.Identity{ID: "3", Email: "student@school.com", FirstName: "Jane", LastName: "Smith", Role: session.RoleStudent}
	janitor  = session.Identity{ID: "9", Email: "janitor@school.com", FirstName: "Sam", Role: "janitor"}
)

type fixture struct {
	app      Server
	sessions *sessionstore.MemoryBackend
	db       *inmemdb.DB
	logger   *testutil.Logger
}

func testConfig() *core.Config {
	return &core.Config{
		Env:      "TEST",
		AppName:  "Masomo",
		TestMode: true,
		Server:   core.ServerConfig{DisableReqLogs: true},
		Portal: core.PortalConfig{
			SessionCookie: sidCookie,
			SessionTTL:    time.Hour,
		},
	}
}

// setup returns a portal over the seed records; `edit` may adjust the deps.
func setup(t *testing.T, edit ...func(deps *Deps)) *fixture {
	db := inmemdb.OpenWith(records.Seed())
	sessions := sessionstore.NewMemoryBackend()
	logger := testutil.NewLogger()
	validate, translator := core.NewValidator()

	deps := Deps{
		Conf:       testConfig(),
		Logger:     logger,
		Sessions:   sessions,
		Auth:       auth.NewAuthenticator(fakeAPI{}, validate, logger),
		Policy:     policy.New(logger),
		Catalog:    db.Catalog(),
		Validate:   validate,
		Translator: translator,
	}
	for _, fn := range edit {
		fn(&deps)
	}

	app, err := NewServer(deps)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	return &fixture{app: app, sessions: sessions, db: db, logger: logger}
}

// signIn persists a session for `ident` and returns its sid.
func (f *fixture) signIn(t *testing.T, ident session.Identity) string {
	data, err := json.Marshal(ident)
	require.NoError(t, err)
	sid := uuid.NewString()
	rec := session.Record{Token: "token-" + ident.ID, Identity: string(data)}
	require.NoError(t, f.sessions.For(sid).Save(context.Background(), rec))
	return sid
}

func (f *fixture) serve(req *http.Request, rec *httptest.ResponseRecorder) {
	f.app.ServeHTTP(rec, req)
}

func freezeTime(t *testing.T, now time.Time) {
	prev := records.NowFunc
	records.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { records.NowFunc = prev })
}

// fakeAPI plays the records API auth endpoints.
type fakeAPI struct{}

func (fakeAPI) Post(_ context.Context, path string, in interface{}) (int, []byte, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return 0, nil, err
	}
	var body map[string]string
	_ = json.Unmarshal(data, &body)

	switch path {
	case auth.LoginPath:
		if body["email"] == "down@school.com" {
			return 0, nil, errors.New("dial tcp: connection refused")
		}
		if body["password"] != "password" {
			return http.StatusUnauthorized, []byte("Invalid credentials"), nil
		}
		switch body["email"] {
		case "admin@school.com":
			return http.StatusOK, []byte(`{"token":"t-admin","user":{"id":"1","email":"admin@school.com","username":"Jane Doe","role":"Admin"}}`), nil
		case "broken@school.com":
			return http.StatusOK, []byte(`{"token":"t-broken"}`), nil
		}
		return http.StatusUnauthorized, []byte("Invalid credentials"), nil
	case auth.RegisterPath:
		if body["email"] == "taken@school.com" {
			return http.StatusBadRequest, []byte(`{"errors":{"email":["a user with this email already exists"]}}`), nil
		}
		return http.StatusCreated, []byte(`{"message":"Registration successful."}`), nil
	}
	return http.StatusNotFound, nil, nil
}

type httpTest struct {
	name         string
	method       string
	path         string
	body         url.Values
	sid          string
	wantCode     int
	wantData     []string // fragments of the rendered page
	wantLocation string
	extra        interface{}
}

const testCSRFToken = "test-csrf-token"

// newAuthRequest builds a request from the browser holding `sid`; unsafe methods carry a valid csrf token.
func newAuthRequest(method, path, sid string, form ...url.Values) (*http.Request, *httptest.ResponseRecorder) {
	if method == "" {
		method = http.MethodGet
	}
	var values url.Values
	if len(form) > 0 && form[0] != nil {
		values = form[0]
	}
	if method != http.MethodGet && method != http.MethodHead {
		values = withField(values, csrfField, testCSRFToken)
	}
	req, rec := newFormRequest(method, path, sid, values)
	if values.Get(csrfField) != "" {
		req.AddCookie(&http.Cookie{Name: csrfCookie, Value: testCSRFToken})
	}
	return req, rec
}

// newFormRequest builds a request as is, without any csrf token.
func newFormRequest(method, path, sid string, form url.Values) (*http.Request, *httptest.ResponseRecorder) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: sidCookie, Value: sid})
	}
	return req, httptest.NewRecorder()
}

// withField returns a copy of `form` with `key` set.
func withField(form url.Values, key, val string) url.Values {
	cp := url.Values{}
	for k, v := range form {
		cp[k] = v
	}
	cp.Set(key, val)
	return cp
}

func newRequest(method, path string, form ...url.Values) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", form...)
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "code; body: %s", rec.Body.String())
	if tt.wantLocation != "" {
		assert.Equal(t, tt.wantLocation, rec.Header().Get(echo.HeaderLocation))
	}
	for _, want := range tt.wantData {
		assert.Contains(t, rec.Body.String(), want)
	}
}

func runHTTPTests(t *testing.T, f *fixture, tests []httpTest) {
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, rec := newAuthRequest(tc.method, tc.path, tc.sid, tc.body)
			f.serve(req, rec)
			checkCodeAndData(t, tc, rec)
		})
	}
}

// responseCookie returns the cookie `name` set by the response; the last one wins, as in a browser.
func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

// stubCollection answers every call with err.
type stubCollection[T any] struct {
	err error
}

func (c stubCollection[T]) List(context.Context) ([]T, error) { return nil, c.err }

func (c stubCollection[T]) Get(context.Context, string) (T, error) {
	var zero T
	return zero, c.err
}

func (c stubCollection[T]) Create(context.Context, T) (T, error) {
	var zero T
	return zero, c.err
}

func (c stubCollection[T]) Update(context.Context, string, T) (T, error) {
	var zero T
	return zero, c.err
}

func (c stubCollection[T]) Delete(context.Context, string) error { return c.err }

// brokenBackend fails to load any session.
type brokenBackend struct{}

func (brokenBackend) For(string) session.Persister { return brokenPersister{} }

type brokenPersister struct{}

func (brokenPersister) Load(context.Context) (session.Record, error) {
	return session.Record{}, errors.New("redis: connection refused")
}
func (brokenPersister) Save(context.Context, session.Record) error { return errors.New("redis: connection refused") }
func (brokenPersister) Remove(context.Context) error { return errors.New("redis: connection refused") }

package echodevapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/user"
	inmemdb "github.com/trezcool/masomo-portal/storage/database/inmem"
	"github.com/trezcool/masomo-portal/tests/testutil"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errInvalidToken = httpErr{Error: "invalid or expired jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

type fixture struct {
	app    Server
	db     *inmemdb.DB
	users  *user.Service
	logger *testutil.Logger
}

func testConfig() *core.Config {
	return &core.Config{
		Env:      "TEST",
		AppName:  "Masomo",
		TestMode: true,
		Server:   core.ServerConfig{DisableReqLogs: true},
		DevAPI: core.DevAPIConfig{
			SecretKey:          "test-secret",
			JWTExpirationDelta: time.Hour,
		},
	}
}

// setup returns an API over the seed records and the demo accounts.
func setup(t *testing.T) *fixture {
	backend := testutil.SeedBackend(t)
	logger := testutil.NewLogger()

	app := NewServer(Deps{
		Conf:       testConfig(),
		Logger:     logger,
		Users:      backend.Users,
		Catalog:    backend.DB.Catalog(),
		Validate:   backend.Validate,
		Translator: backend.Translator,
	})
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	return &fixture{app: app, db: backend.DB, users: backend.Users, logger: logger}
}

// getToken signs a token for the account registered under `email`.
func (f *fixture) getToken(t *testing.T, email string) string {
	usr, err := f.users.GetByEmail(email)
	require.NoError(t, err)

	s := f.app.(*server)
	token, err := s.generateToken(s.userClaims(usr))
	require.NoError(t, err)
	return token
}

func (f *fixture) serve(req *http.Request, rec *httptest.ResponseRecorder) {
	f.app.ServeHTTP(rec, req)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte // compared as JSON when set
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	return data
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "code; body: %s", rec.Body.String())
	if tt.wantData != nil {
		assert.JSONEq(t, string(tt.wantData), rec.Body.String())
	}
}

func runHTTPTests(t *testing.T, f *fixture, tests []httpTest) {
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, rec := newAuthRequest(tc.method, tc.path, tc.token, tc.body)
			f.serve(req, rec)
			checkCodeAndData(t, tc, rec)
		})
	}
}

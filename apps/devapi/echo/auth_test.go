package echodevapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	loginPath    = "/api/v1/Auth/login"
	registerPath = "/api/v1/Auth/register"
)

func TestAuthAPI_login(t *testing.T) {
	f := setup(t)

	type extra struct {
		wantUser userPayload
	}
	tests := []httpTest{
		{
			name:     "admin",
			method:   http.MethodPost,
			path:     loginPath,
			body:     []byte(`{"email":"admin@school.com","password":"password"}`),
			wantCode: http.StatusOK,
			extra:    extra{wantUser: userPayload{ID: "1", Email: "admin@school.com", Username: "Jane Doe", Role: "admin"}},
		},
		{
			name:     "student, mixed case email",
			method:   http.MethodPost,
			path:     loginPath,
			body:     []byte(`{"email":" Student@School.com","password":"password"}`),
			wantCode: http.StatusOK,
			extra:    extra{wantUser: userPayload{ID: "3", Email: "student@school.com", Username: "Jane Smith", Role: "student"}},
		},
		{
			name:     "wrong password",
			method:   http.MethodPost,
			path:     loginPath,
			body:     []byte(`{"email":"admin@school.com","password":"nope"}`),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "unknown email",
			method:   http.MethodPost,
			path:     loginPath,
			body:     []byte(`{"email":"nobody@school.com","password":"password"}`),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "missing password",
			method:   http.MethodPost,
			path:     loginPath,
			body:     []byte(`{"email":"admin@school.com"}`),
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, rec := newRequest(tc.method, tc.path, tc.body)
			f.serve(req, rec)
			require.Equal(t, tc.wantCode, rec.Code, rec.Body.String())

			if tc.wantCode != http.StatusOK {
				assert.Equal(t, "Invalid credentials", rec.Body.String())
				return
			}

			var resp loginResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.extra.(extra).wantUser, resp.User)

			claims := new(Claims)
			_, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
				return []byte("test-secret"), nil
			})
			require.NoError(t, err)
			assert.Equal(t, resp.User.ID, claims.Subject)
			assert.Equal(t, resp.User.Role, claims.Role)
		})
	}

	assert.True(t, f.logger.Has("info", "login refused"))
}

func TestAuthAPI_register(t *testing.T) {
	f := setup(t)

	account := func(email, role, password string) []byte {
		return marshalObj(t, map[string]string{
			"firstName": "Ada", "lastName": "Lovelace", "email": email,
			"password": password, "confirmPassword": password, "role": role,
		})
	}

	tests := []httpTest{
		{
			name:     "lecturer through the teacher alias",
			method:   http.MethodPost,
			path:     registerPath,
			body:     account("ada@school.com", "teacher", "Engine#1843"),
			wantCode: http.StatusCreated,
			wantData: []byte(`{"message":"Registration successful."}`),
		},
		{
			name:     "email taken",
			method:   http.MethodPost,
			path:     registerPath,
			body:     account("ADMIN@school.com", "admin", "Engine#1843"),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"errors":{"email":["a user with this email already exists"]}}`),
		},
		{
			name:     "short password",
			method:   http.MethodPost,
			path:     registerPath,
			body:     account("bob@school.com", "admin", "x1"),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"errors":{"password":["password must contain at least 8 characters"]}}`),
		},
		{
			name:     "password like the name",
			method:   http.MethodPost,
			path:     registerPath,
			body:     account("bob@school.com", "admin", "lovelace1"),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"errors":{"password":["password cannot be similar to user attributes"]}}`),
		},
		{
			name:     "student without student id",
			method:   http.MethodPost,
			path:     registerPath,
			body:     account("kid@school.com", "student", "Engine#1843"),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"errors":{"studentId":["this field is required"]}}`),
		},
	}
	runHTTPTests(t, f, tests)

	t.Run("registered account can log in", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, loginPath, []byte(`{"email":"ada@school.com","password":"Engine#1843"}`))
		f.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp loginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "lecturer", resp.User.Role)
		assert.Equal(t, "Ada Lovelace", resp.User.Username)
	})
}

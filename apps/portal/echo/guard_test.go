package echoportal

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-portal/core/session"
)

func TestGuard(t *testing.T) {
	f := setup(t)
	adminSid := f.signIn(t, admin)
	lecturerSid := f.signIn(t, lecturer)
	studentSid := f.signIn(t, student)
	janitorSid := f.signIn(t, janitor)

	tests := []httpTest{
		{
			name: "anonymous is sent to login", path: "/dashboard",
			wantCode: http.StatusFound, wantLocation: "/login?next=%2Fdashboard",
		},
		{
			name: "next keeps the query", path: "/students?status=active",
			wantCode: http.StatusFound, wantLocation: "/login?next=%2Fstudents%3Fstatus%3Dactive",
		},
		{
			name: "unknown sid is anonymous", path: "/marks", sid: "not-a-uuid",
			wantCode: http.StatusFound, wantLocation: "/login?next=%2Fmarks",
		},
		{name: "home", path: "/", sid: adminSid, wantCode: http.StatusFound, wantLocation: "/dashboard"},
		{name: "admin landing", path: "/dashboard", sid: adminSid, wantCode: http.StatusFound, wantLocation: "/dashboards/admin"},
		{name: "lecturer landing", path: "/dashboard", sid: lecturerSid, wantCode: http.StatusFound, wantLocation: "/dashboards/lecturer"},
		{name: "student landing", path: "/dashboard", sid: studentSid, wantCode: http.StatusFound, wantLocation: "/dashboards/student"},
		{
			name: "unknown role stays put", path: "/dashboard", sid: janitorSid,
			wantCode: http.StatusOK, wantData: []string{"No accessible pages for your role.", "Good "},
		},
		{
			name: "student cannot open staff", path: "/staff", sid: studentSid,
			wantCode: http.StatusForbidden, wantData: []string{"You do not have access to this page.", "Sign out"},
		},
		{
			name: "student cannot open staff detail", path: "/staff/1", sid: studentSid,
			wantCode: http.StatusForbidden,
		},
		{name: "lecturer cannot open admin dashboard", path: "/dashboards/admin", sid: lecturerSid, wantCode: http.StatusForbidden},
		{name: "unknown role cannot open students", path: "/students", sid: janitorSid, wantCode: http.StatusForbidden},
		{name: "lecturer opens students", path: "/students", sid: lecturerSid, wantCode: http.StatusOK, wantData: []string{"Students"}},
		{name: "trailing slash", path: "/students/", sid: adminSid, wantCode: http.StatusOK, wantData: []string{"Students"}},
		{name: "unknown page", path: "/nope", sid: adminSid, wantCode: http.StatusNotFound, wantData: []string{"Not Found"}},
	}
	runHTTPTests(t, f, tests)

	assert.True(t, f.logger.Has("warn", "unrecognized role"), f.logger.String())
}

func TestGuard_navigation(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name    string
		ident   session.Identity
		want    []string
		notWant []string
	}{
		{
			name:  "admin sees everything",
			ident: admin,
			want: []string{
				`href="/dashboards/admin"`, `href="/students"`, `href="/staff"`, `href="/lecturers"`,
				`href="/lectures"`, `href="/subjects"`, `href="/marks"`,
			},
		},
		{
			name:    "lecturer",
			ident:   lecturer,
			want:    []string{`href="/dashboards/lecturer"`, `href="/students"`, `href="/lectures"`, `href="/subjects"`, `href="/marks"`},
			notWant: []string{`href="/staff"`, `href="/lecturers"`},
		},
		{
			name:    "student",
			ident:   student,
			want:    []string{`href="/dashboards/student"`, `href="/lectures"`, `href="/marks"`},
			notWant: []string{`href="/students"`, `href="/staff"`, `href="/lecturers"`, `href="/subjects"`},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/lectures", f.signIn(t, tc.ident))
			f.serve(req, rec)
			require.Equal(t, http.StatusOK, rec.Code)

			body := rec.Body.String()
			for _, w := range tc.want {
				assert.Contains(t, body, w)
			}
			for _, w := range tc.notWant {
				assert.NotContains(t, body, w)
			}
			assert.Contains(t, body, `href="/lectures" data-icon="calendar" class="active"`)
			assert.Contains(t, body, tc.ident.FullName())
		})
	}
}

func TestGuard_restoreFailure(t *testing.T) {
	f := setup(t, func(deps *Deps) { deps.Sessions = brokenBackend{} })

	req, rec := newAuthRequest(http.MethodGet, "/dashboard", "")
	f.serve(req, rec)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Loading your session")
	assert.True(t, f.logger.Has("error", "restoring session"))
}

func TestGuard_corruptSession(t *testing.T) {
	f := setup(t)
	sid := f.signIn(t, admin)
	require.NoError(t, f.sessions.For(sid).Save(context.Background(), session.Record{Token: "t1", Identity: "{not json"}))

	req, rec := newAuthRequest(http.MethodGet, "/students", sid)
	f.serve(req, rec)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?next=%2Fstudents", rec.Header().Get("Location"))
	assert.Equal(t, 0, f.sessions.Len(), "corrupt pair is removed")
	assert.True(t, f.logger.Has("warn", session.ErrCorruptSession.Error()))
}

func TestGuard_sidCookie(t *testing.T) {
	f := setup(t)

	req, rec := newRequest(http.MethodGet, "/login")
	f.serve(req, rec)

	cookie := responseCookie(rec, sidCookie)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 3600, cookie.MaxAge)

	// a valid sid is kept
	req, rec = newAuthRequest(http.MethodGet, "/login", cookie.Value)
	f.serve(req, rec)
	assert.Nil(t, responseCookie(rec, sidCookie))
}

func TestCSRF(t *testing.T) {
	f := setup(t)
	sid := f.signIn(t, admin)

	t.Run("forms carry the token", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/login")
		f.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code)

		cookie := responseCookie(rec, csrfCookie)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)
		assert.NotEmpty(t, cookie.Value)
		assert.Contains(t, rec.Body.String(), `name="_csrf" value="`+cookie.Value+`"`)

		req, rec = newAuthRequest(http.MethodGet, "/subjects/SUB001", sid)
		req.AddCookie(&http.Cookie{Name: csrfCookie, Value: testCSRFToken})
		f.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `action="/subjects/SUB001/delete"`)
		assert.Contains(t, body, `name="_csrf" value="`+testCSRFToken+`"`)
	})

	type extra struct {
		form   url.Values
		cookie string
	}
	tests := []httpTest{
		{name: "delete without token", method: http.MethodPost, path: "/subjects/SUB001/delete", sid: sid, wantCode: http.StatusBadRequest},
		{
			name: "delete with a forged token", method: http.MethodPost, path: "/subjects/SUB001/delete", sid: sid,
			wantCode: http.StatusForbidden, wantData: []string{"invalid csrf token"},
			extra:    extra{form: url.Values{csrfField: {"forged"}}, cookie: testCSRFToken},
		},
		{
			name: "update with a token but no cookie", method: http.MethodPost, path: "/subjects/SUB001", sid: sid,
			wantCode: http.StatusForbidden, extra: extra{form: withField(subjectForm("HACK1"), csrfField, testCSRFToken)},
		},
		{name: "logout without token", method: http.MethodPost, path: "/logout", sid: sid, wantCode: http.StatusBadRequest},
		{
			name: "login without token", method: http.MethodPost, path: "/login",
			wantCode: http.StatusBadRequest, extra: extra{form: credentials("admin@school.com", "password", "")},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var ex extra
			if tc.extra != nil {
				ex = tc.extra.(extra)
			}
			req, rec := newFormRequest(tc.method, tc.path, tc.sid, ex.form)
			if ex.cookie != "" {
				req.AddCookie(&http.Cookie{Name: csrfCookie, Value: ex.cookie})
			}
			f.serve(req, rec)
			checkCodeAndData(t, tc, rec)
		})
	}

	subject, err := f.db.Subjects.Get(context.Background(), "SUB001")
	require.NoError(t, err)
	assert.NotEqual(t, "HACK1", subject.Code)

	_, err = f.sessions.For(sid).Load(context.Background())
	assert.NoError(t, err, "session survives a rejected logout")
}

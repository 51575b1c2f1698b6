package echoportal

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-portal/core/records"
)

func subjectForm(code string) url.Values {
	return url.Values{
		"code": {code}, "name": {"Intro to Programming"}, "description": {"Go from zero"},
		"credits": {"3"}, "department": {"Computer Science"}, "semester": {"1"},
		"lecturerId": {"LEC001"}, "lecturerName": {"Dr. Elena Moreau"}, "status": {"active"},
	}
}

func TestScreens(t *testing.T) {
	f := setup(t)
	adminSid := f.signIn(t, admin)
	lecturerSid := f.signIn(t, lecturer)
	studentSid := f.signIn(t, student)

	invalid := subjectForm(" ")
	invalid.Set("semester", "0")

	tests := []httpTest{
		{
			name: "admin lists students", path: "/students", sid: adminSid,
			wantCode: http.StatusOK,
			wantData: []string{"Manage student information and enrollment", "STU001", "John Doe", "Add Student", `href="/students/1/edit"`},
		},
		{
			name: "search", path: "/students?q=smith", sid: adminSid,
			wantCode: http.StatusOK, wantData: []string{"Jane Smith", "1 shown"},
		},
		{
			name: "filter", path: "/students?status=inactive", sid: adminSid,
			wantCode: http.StatusOK, wantData: []string{"Mike Johnson", "1 shown", `<option value="inactive" selected>`},
		},
		{
			name: "nothing found", path: "/students?q=nobody", sid: adminSid,
			wantCode: http.StatusOK, wantData: []string{"No Students found.", "0 shown"},
		},
		{
			name: "student sees own marks only", path: "/marks", sid: studentSid,
			wantCode: http.StatusOK, wantData: []string{"Jane Smith", "1 shown", "78%"},
		},
		{name: "student cannot add a mark", path: "/marks/new", sid: studentSid, wantCode: http.StatusForbidden},
		{
			name: "student cannot post a mark", method: http.MethodPost, path: "/marks", sid: studentSid,
			body: url.Values{"marks": {"100"}}, wantCode: http.StatusForbidden,
		},
		{
			name: "student opens own mark", path: "/marks/2", sid: studentSid,
			wantCode: http.StatusOK, wantData: []string{"General Physics", "Good performance, room for improvement"},
		},
		{name: "student cannot open other marks", path: "/marks/1", sid: studentSid, wantCode: http.StatusNotFound},
		{name: "lecturer cannot edit lecturers", path: "/lecturers/LEC001/edit", sid: lecturerSid, wantCode: http.StatusForbidden},
		{
			name: "lecturer lists subjects", path: "/subjects", sid: lecturerSid,
			wantCode: http.StatusOK, wantData: []string{"MATH101", "Add Subject"},
		},
		{
			name: "detail", path: "/subjects/SUB002", sid: adminSid,
			wantCode: http.StatusOK, wantData: []string{"PHYS201", "Fundamentals of mechanics", `action="/subjects/SUB002/delete"`},
		},
		{name: "unknown id", path: "/subjects/SUB999", sid: adminSid, wantCode: http.StatusNotFound, wantData: []string{"Page not found."}},
		{
			name: "edit form", path: "/subjects/SUB001/edit", sid: adminSid,
			wantCode: http.StatusOK, wantData: []string{"Edit Subject", `name="code" value="MATH101"`, `action="/subjects/SUB001"`},
		},
		{
			name: "new form", path: "/subjects/new", sid: adminSid,
			wantCode: http.StatusOK, wantData: []string{"New Subject", `action="/subjects"`},
		},
		{
			name: "invalid create", method: http.MethodPost, path: "/subjects", sid: adminSid, body: invalid,
			wantCode: http.StatusBadRequest, wantData: []string{"this field cannot be blank", `value="Intro to Programming"`},
		},
		{
			name: "update unknown id", method: http.MethodPost, path: "/subjects/SUB999", sid: adminSid,
			body: subjectForm("CS101"), wantCode: http.StatusNotFound,
		},
		{name: "delete unknown id", method: http.MethodPost, path: "/subjects/SUB999/delete", sid: adminSid, wantCode: http.StatusNotFound},
	}
	runHTTPTests(t, f, tests)
}

func TestScreens_subjectLifecycle(t *testing.T) {
	f := setup(t)
	sid := f.signIn(t, admin)
	ctx := context.Background()

	// create
	req, rec := newAuthRequest(http.MethodPost, "/subjects", sid, subjectForm(" cs101 "))
	f.serve(req, rec)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/subjects", rec.Header().Get("Location"))
	flash := responseCookie(rec, flashCookie)
	require.NotNil(t, flash)

	subjects, err := f.db.Subjects.List(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 4)
	created := subjects[3]
	assert.Equal(t, "CS101", created.Code)
	assert.Equal(t, 3, created.Credits)
	assert.NotEmpty(t, created.ID)

	req, rec = newAuthRequest(http.MethodGet, "/subjects", sid)
	req.AddCookie(flash)
	f.serve(req, rec)
	assert.Contains(t, rec.Body.String(), "Subject created.")
	assert.Contains(t, rec.Body.String(), "CS101")

	// update
	form := subjectForm("CS102")
	form.Set("credits", "4")
	req, rec = newAuthRequest(http.MethodPost, "/subjects/"+created.ID, sid, form)
	f.serve(req, rec)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/subjects/"+created.ID, rec.Header().Get("Location"))

	updated, err := f.db.Subjects.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "CS102", updated.Code)
	assert.Equal(t, 4, updated.Credits)
	assert.Equal(t, created.ID, updated.ID)

	// delete
	req, rec = newAuthRequest(http.MethodPost, "/subjects/"+created.ID+"/delete", sid)
	f.serve(req, rec)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/subjects", rec.Header().Get("Location"))
	flash = responseCookie(rec, flashCookie)
	require.NotNil(t, flash)
	assert.Equal(t, url.QueryEscape("Subject deleted."), flash.Value)

	_, err = f.db.Subjects.Get(ctx, created.ID)
	assert.Equal(t, records.ErrNotFound, err)
}

func TestScreens_lecturerGradesMark(t *testing.T) {
	f := setup(t)
	sid := f.signIn(t, lecturer)

	form := url.Values{
		"studentId": {"STU002"}, "studentName": {" Jane Smith "}, "subjectId": {"SUB002"}, "subjectName": {"General Physics"},
		"examType": {"quiz"}, "marks": {"33"}, "totalMarks": {"40"}, "date": {"2024-02-01"}, "lecturerId": {"LEC002"},
		// derived, never taken from the form
		"percentage": {"100"}, "grade": {"A+"},
	}
	req, rec := newAuthRequest(http.MethodPost, "/marks", sid, form)
	f.serve(req, rec)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	marks, err := f.db.Marks.List(context.Background())
	require.NoError(t, err)
	require.Len(t, marks, 4)
	mark := marks[3]
	assert.Equal(t, "Jane Smith", mark.StudentName)
	assert.Equal(t, 83, mark.Percentage)
	assert.Equal(t, "B+", mark.Grade)

	req, rec = newAuthRequest(http.MethodGet, "/marks?examType=quiz", sid)
	f.serve(req, rec)
	assert.Contains(t, rec.Body.String(), "33/40 (83%)")
	assert.Contains(t, rec.Body.String(), "1 shown")

	t.Run("more marks than the total", func(t *testing.T) {
		form.Set("marks", "41")
		req, rec := newAuthRequest(http.MethodPost, "/marks", sid, form)
		f.serve(req, rec)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestScreens_apiFailures(t *testing.T) {
	t.Run("refused token ends the session", func(t *testing.T) {
		f := setup(t, func(deps *Deps) {
			deps.Catalog.Subjects = stubCollection[records.Subject]{err: errors.Wrap(records.ErrUnauthorized, "listing subjects")}
		})
		sid := f.signIn(t, admin)

		req, rec := newAuthRequest(http.MethodGet, "/subjects", sid)
		f.serve(req, rec)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login?next=%2Fsubjects", rec.Header().Get("Location"))
		assert.Equal(t, 0, f.sessions.Len())
	})

	t.Run("refused token on save returns to the list", func(t *testing.T) {
		f := setup(t, func(deps *Deps) {
			deps.Catalog.Subjects = stubCollection[records.Subject]{err: records.ErrUnauthorized}
		})
		sid := f.signIn(t, admin)

		req, rec := newAuthRequest(http.MethodPost, "/subjects", sid, subjectForm("CS101"))
		f.serve(req, rec)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login?next=%2Fsubjects", rec.Header().Get("Location"))
	})

	t.Run("other failures show a banner", func(t *testing.T) {
		f := setup(t, func(deps *Deps) {
			deps.Catalog.Subjects = stubCollection[records.Subject]{err: errors.New("status 500")}
		})
		sid := f.signIn(t, admin)

		req, rec := newAuthRequest(http.MethodGet, "/subjects", sid)
		f.serve(req, rec)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Could not load Subjects. Please try again.")
		assert.Contains(t, rec.Body.String(), "No Subjects found.")
		assert.True(t, f.logger.Has("error", "listing Subjects"))
		assert.Equal(t, 1, f.sessions.Len())

		req, rec = newAuthRequest(http.MethodPost, "/subjects", sid, subjectForm("CS101"))
		f.serve(req, rec)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "Could not save the Subject. Please try again.")
	})
}

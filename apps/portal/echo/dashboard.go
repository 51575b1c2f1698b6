package echoportal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/policy"
	"github.com/trezcool/masomo-portal/core/records"
	"github.com/trezcool/masomo-portal/core/session"
)

type dashboardAPI struct {
	s *server
}

func registerDashboards(g *echo.Group, s *server) {
	api := dashboardAPI{s: s}

	g.GET(policy.DashboardRoute, api.landing)
	g.GET(policy.AdminDashboard, api.admin)
	g.GET(policy.LecturerDashboard, api.lecturer)
	g.GET(policy.StudentDashboard, api.student)
}

// landing sends the user to the dashboard of their role. A role without one stays here
// with an empty navigation, since the fallback route would bounce them straight back.
func (api *dashboardAPI) landing(ctx echo.Context) error {
	ident, _ := contextIdentity(ctx)
	route := api.s.Policy.DefaultRouteFor(ident.Role)
	if policy.IsFallback(route) {
		return api.s.render(ctx, http.StatusOK, "nopages", page{Title: "Dashboard", Error: msgNoPages})
	}
	return ctx.Redirect(http.StatusFound, route)
}

func (api *dashboardAPI) admin(ctx echo.Context) error {
	return api.show(ctx, "dashboard_admin", "Admin dashboard", func(data records.Dataset, _ session.Identity) interface{} {
		return records.AdminDashboard(data)
	})
}

func (api *dashboardAPI) lecturer(ctx echo.Context) error {
	return api.show(ctx, "dashboard_lecturer", "Lecturer dashboard", func(data records.Dataset, ident session.Identity) interface{} {
		return records.LecturerDashboard(data, ident)
	})
}

func (api *dashboardAPI) student(ctx echo.Context) error {
	return api.show(ctx, "dashboard_student", "Student dashboard", func(data records.Dataset, ident session.Identity) interface{} {
		return records.StudentDashboard(data, ident)
	})
}

func (api *dashboardAPI) show(
	ctx echo.Context,
	tmpl, title string,
	compute func(data records.Dataset, ident session.Identity) interface{},
) error {
	ident, _ := contextIdentity(ctx)
	p := page{Title: title}

	data, err := loadDataset(ctx.Request().Context(), api.s.Catalog)
	if err != nil {
		if errors.Cause(err) == records.ErrUnauthorized {
			return api.s.forceLogin(ctx, ctx.Request().RequestURI)
		}
		api.s.Logger.Error("loading dashboard", err, ident)
		p.Error = fmt.Sprintf(msgFetchFailed, "the dashboard")
		data = records.Dataset{}
	}
	p.Data = compute(data, ident)
	return api.s.render(ctx, http.StatusOK, tmpl, p)
}

// loadDataset lists every collection of `catalog`, stopping at the first failure.
func loadDataset(ctx context.Context, catalog records.Catalog) (records.Dataset, error) {
	var data records.Dataset
	var err error

	if data.Students, err = catalog.Students.List(ctx); err != nil {
		return records.Dataset{}, errors.Wrap(err, "listing students")
	}
	if data.Staff, err = catalog.Staff.List(ctx); err != nil {
		return records.Dataset{}, errors.Wrap(err, "listing staff")
	}
	if data.Lecturers, err = catalog.Lecturers.List(ctx); err != nil {
		return records.Dataset{}, errors.Wrap(err, "listing lecturers")
	}
	if data.Lectures, err = catalog.Lectures.List(ctx); err != nil {
		return records.Dataset{}, errors.Wrap(err, "listing lectures")
	}
	if data.Subjects, err = catalog.Subjects.List(ctx); err != nil {
		return records.Dataset{}, errors.Wrap(err, "listing subjects")
	}
	if data.Marks, err = catalog.Marks.List(ctx); err != nil {
		return records.Dataset{}, errors.Wrap(err, "listing marks")
	}
	return data, nil
}

// Package policy maps a role to the navigation it may see and the route it lands on.
package policy

import (
	"strings"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/session"
)

// Routes
const (
	LoginRoute     = "/login"
	LogoutRoute    = "/logout"
	SignupRoute    = "/signup"
	DashboardRoute = "/dashboard"

	DashboardsPrefix  = "/dashboards/"
	AdminDashboard    = DashboardsPrefix + "admin"
	LecturerDashboard = DashboardsPrefix + "lecturer"
	StudentDashboard  = DashboardsPrefix + "student"

	StudentsRoute  = "/students"
	StaffRoute     = "/staff"
	LecturersRoute = "/lecturers"
	LecturesRoute  = "/lectures"
	SubjectsRoute  = "/subjects"
	MarksRoute     = "/marks"
)

// NoPagesMessage is shown in place of the navigation of a role that sees none.
const NoPagesMessage = "No accessible pages for your role."

// Destination is where a navigation item leads: a Static route or a Dynamic one resolved per role.
type Destination interface {
	Resolve(role session.Role) string
	isDestination()
}

type Static struct {
	Route string
}

func (s Static) Resolve(session.Role) string { return s.Route }
func (Static) isDestination()                {}

type Dynamic struct {
	Resolver func(role session.Role) string
}

func (d Dynamic) Resolve(role session.Role) string { return d.Resolver(role) }
func (Dynamic) isDestination()                     {}

// NavItem is one entry of the navigation.
type NavItem struct {
	Name  string
	Icon  string
	Dest  Destination
	Roles []session.Role
}

func (item NavItem) Allows(role session.Role) bool {
	for _, r := range item.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Href resolves the item's destination for `role`.
func (item NavItem) Href(role session.Role) string {
	return item.Dest.Resolve(role)
}

var (
	all       = []session.Role{session.RoleAdmin, session.RoleLecturer, session.RoleStudent}
	staffOnly = []session.Role{session.RoleAdmin, session.RoleLecturer}
	adminOnly = []session.Role{session.RoleAdmin}

	landings = map[session.Role]string{
		session.RoleAdmin:    AdminDashboard,
		session.RoleLecturer: LecturerDashboard,
		session.RoleStudent:  StudentDashboard,
	}
)

// DefaultNavigation returns the full navigation in display order.
func DefaultNavigation() []NavItem {
	return []NavItem{
		{Name: "Dashboard", Icon: "layout-dashboard", Dest: Dynamic{Resolver: landingFor}, Roles: all},
		{Name: "Students", Icon: "users", Dest: Static{Route: StudentsRoute}, Roles: staffOnly},
		{Name: "Staff", Icon: "user-check", Dest: Static{Route: StaffRoute}, Roles: adminOnly},
		{Name: "Lecturers", Icon: "user", Dest: Static{Route: LecturersRoute}, Roles: adminOnly},
		{Name: "Lectures", Icon: "calendar", Dest: Static{Route: LecturesRoute}, Roles: all},
		{Name: "Subjects", Icon: "book-marked", Dest: Static{Route: SubjectsRoute}, Roles: staffOnly},
		{Name: "Marks", Icon: "graduation-cap", Dest: Static{Route: MarksRoute}, Roles: all},
	}
}

func landingFor(role session.Role) string {
	if route, ok := landings[role]; ok {
		return route
	}
	return LoginRoute
}

// Policy answers what a role may see. It holds no per-user state.
type Policy struct {
	nav    []NavItem
	logger core.Logger
}

// New returns a Policy over DefaultNavigation. logger may be nil.
func New(logger core.Logger) *Policy {
	return NewWithNavigation(DefaultNavigation(), logger)
}

func NewWithNavigation(nav []NavItem, logger core.Logger) *Policy {
	if logger == nil {
		logger = core.NopLogger
	}
	return &Policy{nav: nav, logger: logger}
}

// NavigationFor returns the items `role` may see, in declaration order.
// An unrecognized or empty role sees nothing.
func (p *Policy) NavigationFor(role session.Role) []NavItem {
	items := make([]NavItem, 0, len(p.nav))
	for _, item := range p.nav {
		if item.Allows(role) {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		p.unrecognized(role, "navigation")
	}
	return items
}

// DefaultRouteFor is the landing route of `role`, or LoginRoute for an unrecognized role.
func (p *Policy) DefaultRouteFor(role session.Role) string {
	route := landingFor(role)
	if route == LoginRoute {
		p.unrecognized(role, "landing route")
	}
	return route
}

// IsFallback reports whether `route` is the fallback handed to unrecognized roles.
func IsFallback(route string) bool {
	return route == LoginRoute
}

// Reachable reports whether `role` may open `path`.
// Paths under a static navigation route follow that item's roles, role dashboards are
// reserved to their role, and every other path is open to any signed-in user.
func (p *Policy) Reachable(role session.Role, path string) bool {
	if strings.HasPrefix(path, DashboardsPrefix) {
		return path == landingFor(role) || strings.HasPrefix(path, landingFor(role)+"/")
	}
	for _, item := range p.nav {
		static, ok := item.Dest.(Static)
		if !ok {
			continue
		}
		if path == static.Route || strings.HasPrefix(path, static.Route+"/") {
			return item.Allows(role)
		}
	}
	return true
}

func (p *Policy) unrecognized(role session.Role, what string) {
	if role.IsKnown() {
		return
	}
	p.logger.Warn("unrecognized role: empty "+what, map[string]interface{}{"role": string(role)})
}

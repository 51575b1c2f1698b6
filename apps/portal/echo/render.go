package echoportal

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/session"
)

//go:embed templates
var templatesFS embed.FS

const layoutFile = "templates/layout.html"

// page is the data handed to every template.
type page struct {
	Title   string
	AppName string
	Chrome  *chrome
	Flash   string
	Error   string
	CSRF    string
	Data    interface{}
}

// chrome is the signed-in frame around guarded pages.
type chrome struct {
	Greeting    string
	DisplayName string
	FullName    string
	Email       string
	Role        session.Role
	Nav         []navLink
}

type navLink struct {
	Name   string
	Icon   string
	Href   string
	Active bool
}

// renderer executes one template set per page, each parsed together with the layout.
type renderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*renderer)(nil)

var templateFuncs = template.FuncMap{
	"initial": func(s string) string {
		if s == "" {
			return "?"
		}
		return strings.ToUpper(s[:1])
	},
}

func newRenderer() (*renderer, error) {
	files, err := fs.Glob(templatesFS, "templates/pages/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "listing page templates")
	}

	r := &renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templatesFS, layoutFile, file)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", file)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes the page only once it executed completely.
func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return errors.Errorf("no such page template: %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return errors.Wrapf(err, "executing %s", name)
	}
	_, err := buf.WriteTo(w)
	return err
}

// render fills in the common page data and renders `name` with `code`.
func (s *server) render(ctx echo.Context, code int, name string, p page) error {
	p.AppName = s.Conf.AppName
	p.CSRF = contextCSRF(ctx)
	if p.Chrome == nil {
		p.Chrome = contextChrome(ctx)
	}
	if p.Flash == "" {
		p.Flash = popFlash(ctx)
	}
	return ctx.Render(code, name, p)
}

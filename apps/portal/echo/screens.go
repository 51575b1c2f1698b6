package echoportal

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/records"
	"github.com/trezcool/masomo-portal/core/session"
)

type (
	listView struct {
		Screen    screenMeta
		Search    string
		Filters   []filterView
		Headers   []string
		Rows      []records.Row
		Total     int
		Summary   interface{}
		CanModify bool
	}

	filterView struct {
		Param    string
		Label    string
		Options  []records.Option
		Selected string
	}

	formView struct {
		Screen  screenMeta
		Action  string
		ID      string
		Editing bool
		Fields  []fieldView
	}

	fieldView struct {
		records.Field
		Value string
		Error string
	}

	detailView struct {
		Screen    screenMeta
		ID        string
		Fields    []detailField
		CanModify bool
	}

	detailField struct {
		Label string
		Value string
	}

	screenMeta struct {
		Name     string
		Singular string
		Subtitle string
		Route    string
		Icon     string
	}
)

// screenAPI serves the list, form and detail pages of one entity.
type screenAPI[T records.Record[T]] struct {
	s         *server
	screen    *records.Screen[T]
	coll      records.Collection[T]
	summarize func(items []T) interface{}
}

// registerScreen mounts the pages of `screen` under its route. summarize may be nil.
func registerScreen[T records.Record[T]](
	g *echo.Group,
	s *server,
	screen *records.Screen[T],
	coll records.Collection[T],
	summarize func(items []T) interface{},
) {
	api := &screenAPI[T]{s: s, screen: screen, coll: coll, summarize: summarize}

	sg := g.Group(screen.Route)
	sg.GET("", api.list)
	sg.GET("/new", api.newForm, api.editorsOnly)
	sg.POST("", api.create, api.editorsOnly)
	sg.GET("/:id", api.view)
	sg.GET("/:id/edit", api.editForm, api.editorsOnly)
	sg.POST("/:id", api.update, api.editorsOnly)
	sg.POST("/:id/delete", api.destroy, api.editorsOnly)
}

func (api *screenAPI[T]) meta() screenMeta {
	return screenMeta{
		Name:     api.screen.Name,
		Singular: api.screen.Singular,
		Subtitle: api.screen.Subtitle,
		Route:    api.screen.Route,
		Icon:     api.screen.Icon,
	}
}

func (api *screenAPI[T]) editorsOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ident, _ := contextIdentity(ctx)
		if !api.screen.CanModify(ident.Role) {
			return errHttpForbidden
		}
		return next(ctx)
	}
}

// failed handles an error of the records API. A refused token ends the session; anything
// else is logged and turned into a banner message.
func (api *screenAPI[T]) failed(ctx echo.Context, err error, next, action, banner string) (string, error) {
	if errors.Cause(err) == records.ErrUnauthorized {
		return "", api.s.forceLogin(ctx, next)
	}
	ident, _ := contextIdentity(ctx)
	api.s.Logger.Error(fmt.Sprintf("%s %s", action, api.screen.Name), err, ident)
	return banner, nil
}

// Handlers

func (api *screenAPI[T]) list(ctx echo.Context) error {
	ident, _ := contextIdentity(ctx)
	p := page{Title: api.screen.Name}

	items, err := api.coll.List(ctx.Request().Context())
	if err != nil {
		banner, rErr := api.failed(ctx, err, ctx.Request().RequestURI, "listing", fmt.Sprintf(msgFetchFailed, api.screen.Name))
		if banner == "" {
			return rErr
		}
		p.Error = banner
		items = nil
	}

	q := records.Query{Search: ctx.QueryParam("q"), Filters: make(map[string]string, len(api.screen.Filters))}
	for _, f := range api.screen.Filters {
		q.Filters[f.Param] = ctx.QueryParam(f.Param)
	}

	shown := api.screen.Apply(items, q, ident)
	view := listView{
		Screen:    api.meta(),
		Search:    q.Search,
		Headers:   api.screen.Headers(),
		Rows:      api.screen.Rows(shown),
		Total:     len(shown),
		CanModify: api.screen.CanModify(ident.Role),
	}
	options := api.screen.FilterOptions(items)
	for _, f := range api.screen.Filters {
		view.Filters = append(view.Filters, filterView{
			Param:    f.Param,
			Label:    f.Label,
			Options:  options[f.Param],
			Selected: q.Value(f.Param),
		})
	}
	if api.summarize != nil {
		view.Summary = api.summarize(shown)
	}

	p.Data = view
	return api.s.render(ctx, http.StatusOK, "list", p)
}

func (api *screenAPI[T]) view(ctx echo.Context) error {
	ident, _ := contextIdentity(ctx)
	id := ctx.Param("id")

	item, err := api.coll.Get(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == records.ErrUnauthorized {
			return api.s.forceLogin(ctx, ctx.Request().RequestURI)
		}
		return errors.Wrapf(err, "getting %s %s", api.screen.Singular, id)
	}
	if !api.visible(item, ident) {
		return errHttpNotFound
	}

	values := records.FormValues(item)
	view := detailView{Screen: api.meta(), ID: id, CanModify: api.screen.CanModify(ident.Role)}
	for _, fld := range api.screen.Fields {
		view.Fields = append(view.Fields, detailField{Label: fld.Label, Value: values[fld.Name]})
	}
	return api.s.render(ctx, http.StatusOK, "detail", page{Title: api.screen.Singular, Data: view})
}

// visible reports whether the row scope of the screen lets `ident` see `item`.
func (api *screenAPI[T]) visible(item T, ident session.Identity) bool {
	if api.screen.Scope == nil {
		return true
	}
	return len(api.screen.Scope([]T{item}, ident)) == 1
}

func (api *screenAPI[T]) newForm(ctx echo.Context) error {
	return api.renderForm(ctx, http.StatusOK, "", nil, nil, "")
}

func (api *screenAPI[T]) editForm(ctx echo.Context) error {
	id := ctx.Param("id")
	item, err := api.coll.Get(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == records.ErrUnauthorized {
			return api.s.forceLogin(ctx, ctx.Request().RequestURI)
		}
		return errors.Wrapf(err, "getting %s %s", api.screen.Singular, id)
	}
	return api.renderForm(ctx, http.StatusOK, id, records.FormValues(item), nil, "")
}

func (api *screenAPI[T]) create(ctx echo.Context) error {
	item, fldErrs, err := api.bind(ctx, "")
	if err != nil {
		return err
	}
	if fldErrs != nil {
		return api.renderForm(ctx, http.StatusBadRequest, "", records.FormValues(item), fldErrs, "")
	}

	if _, err = api.coll.Create(ctx.Request().Context(), item); err != nil {
		banner, rErr := api.failed(ctx, err, api.screen.Route, "creating", fmt.Sprintf(msgSaveFailed, api.screen.Singular))
		if banner == "" {
			return rErr
		}
		return api.renderForm(ctx, http.StatusBadGateway, "", records.FormValues(item), nil, banner)
	}

	setFlash(ctx, api.screen.Singular+" created.")
	return ctx.Redirect(http.StatusFound, api.screen.Route)
}

func (api *screenAPI[T]) update(ctx echo.Context) error {
	id := ctx.Param("id")
	item, fldErrs, err := api.bind(ctx, id)
	if err != nil {
		return err
	}
	if fldErrs != nil {
		return api.renderForm(ctx, http.StatusBadRequest, id, records.FormValues(item), fldErrs, "")
	}

	if _, err = api.coll.Update(ctx.Request().Context(), id, item); err != nil {
		if errors.Cause(err) == records.ErrNotFound {
			return errHttpNotFound
		}
		banner, rErr := api.failed(ctx, err, api.screen.Route+"/"+id+"/edit", "updating", fmt.Sprintf(msgSaveFailed, api.screen.Singular))
		if banner == "" {
			return rErr
		}
		return api.renderForm(ctx, http.StatusBadGateway, id, records.FormValues(item), nil, banner)
	}

	setFlash(ctx, api.screen.Singular+" updated.")
	return ctx.Redirect(http.StatusFound, api.screen.Route+"/"+id)
}

func (api *screenAPI[T]) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.coll.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == records.ErrNotFound {
			return errHttpNotFound
		}
		banner, rErr := api.failed(ctx, err, api.screen.Route, "deleting", fmt.Sprintf(msgDeleteFailed, api.screen.Singular))
		if banner == "" {
			return rErr
		}
		setFlash(ctx, banner)
		return ctx.Redirect(http.StatusFound, api.screen.Route+"/"+id)
	}

	setFlash(ctx, api.screen.Singular+" deleted.")
	return ctx.Redirect(http.StatusFound, api.screen.Route)
}

// bind reads the submitted form into a T, normalizes and validates it.
// Invalid input is returned as field messages.
func (api *screenAPI[T]) bind(ctx echo.Context, id string) (T, map[string]string, error) {
	var item T
	if err := ctx.Bind(&item); err != nil {
		return item, nil, errors.Wrapf(err, "binding to %s", api.screen.Singular)
	}
	item = item.WithRecordID(id)
	if api.screen.Prepare != nil {
		api.screen.Prepare(&item)
	}

	if err := api.s.Validate.Struct(item); err != nil {
		if _, ok := err.(validator.ValidationErrors); !ok {
			return item, nil, errors.Wrapf(err, "validating %s", api.screen.Singular)
		}
		return item, core.FieldMessages(err, api.s.Translator), nil
	}
	return item, nil, nil
}

func (api *screenAPI[T]) renderForm(ctx echo.Context, code int, id string, values, fldErrs map[string]string, banner string) error {
	view := formView{Screen: api.meta(), ID: id, Editing: id != "", Action: api.screen.Route}
	if view.Editing {
		view.Action = api.screen.Route + "/" + id
	}
	for _, fld := range api.screen.Fields {
		view.Fields = append(view.Fields, fieldView{Field: fld, Value: values[fld.Name], Error: fldErrs[fld.Name]})
	}

	title := "New " + api.screen.Singular
	if view.Editing {
		title = "Edit " + api.screen.Singular
	}
	return api.s.render(ctx, code, "form", page{Title: title, Error: banner, Data: view})
}

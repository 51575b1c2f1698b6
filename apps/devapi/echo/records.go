package echodevapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/records"
	"github.com/trezcool/masomo-portal/core/session"
)

// resourceAPI serves one record collection as JSON.
type resourceAPI[T records.Record[T]] struct {
	s      *server
	screen *records.Screen[T]
	coll   records.Collection[T]
}

// registerResource mounts /<resource> and /<resource>/:id behind `jwt`.
// Changes are limited to the editors of `screen`; its Prepare normalizes incoming records.
func registerResource[T records.Record[T]](
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	s *server,
	resource string,
	screen *records.Screen[T],
	coll records.Collection[T],
) {
	api := &resourceAPI[T]{s: s, screen: screen, coll: coll}

	rg := g.Group("/"+resource, jwt)
	rg.GET("", api.query)
	rg.POST("", api.create, api.editorsOnly)
	rg.GET("/:id", api.retrieve)
	rg.PUT("/:id", api.update, api.editorsOnly)
	rg.DELETE("/:id", api.destroy, api.editorsOnly)
}

func (api *resourceAPI[T]) editorsOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		if !api.screen.CanModify(session.NormalizeRole(claims.Role)) {
			return errHttpForbidden
		}
		return next(ctx)
	}
}

// Handlers

func (api *resourceAPI[T]) query(ctx echo.Context) error {
	items, err := api.coll.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrapf(err, "listing %s", api.screen.Name)
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *resourceAPI[T]) retrieve(ctx echo.Context) error {
	item, err := api.coll.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrapf(err, "getting %s", api.screen.Singular)
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *resourceAPI[T]) create(ctx echo.Context) error {
	item, err := api.bind(ctx, "")
	if err != nil {
		return err
	}
	created, err := api.coll.Create(ctx.Request().Context(), item)
	if err != nil {
		return errors.Wrapf(err, "creating %s", api.screen.Singular)
	}
	return ctx.JSON(http.StatusCreated, created)
}

func (api *resourceAPI[T]) update(ctx echo.Context) error {
	id := ctx.Param("id")
	item, err := api.bind(ctx, id)
	if err != nil {
		return err
	}
	updated, err := api.coll.Update(ctx.Request().Context(), id, item)
	if err != nil {
		return errors.Wrapf(err, "updating %s", api.screen.Singular)
	}
	return ctx.JSON(http.StatusOK, updated)
}

func (api *resourceAPI[T]) destroy(ctx echo.Context) error {
	if err := api.coll.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrapf(err, "deleting %s", api.screen.Singular)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *resourceAPI[T]) bind(ctx echo.Context, id string) (T, error) {
	var item T
	if err := ctx.Bind(&item); err != nil {
		return item, errors.Wrapf(err, "binding to %s", api.screen.Singular)
	}
	item = item.WithRecordID(id)
	if api.screen.Prepare != nil {
		api.screen.Prepare(&item)
	}
	if err := api.s.Validate.Struct(item); err != nil {
		return item, err
	}
	return item, nil
}

package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core/contact"
)

type contactAPI struct {
	svc      contact.Service
	validate *validator.Validate
}

func registerContactAPI(g *echo.Group, auth, profile echo.MiddlewareFunc, deps ServerDeps) {
	api := contactAPI{svc: deps.ContactSvc, validate: deps.Validate}

	g.POST("/contact", api.submit)

	ag := g.Group("/admin/contacts", auth, profile, adminMiddleware())
	ag.GET("", api.query)
	ag.POST("/:id/resolve", api.resolve)
}

func (api *contactAPI) submit(ctx echo.Context) error {
	var data contact.NewContact
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewContact")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	c, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting contact")
	}
	return created(ctx, c)
}

func (api *contactAPI) query(ctx echo.Context) error {
	filter := new(contact.QueryFilter)
	page, err := bindQuery(ctx, filter)
	if err != nil {
		return err
	}
	contacts, total, err := api.svc.Query(ctx.Request().Context(), contextUser(ctx), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying contacts")
	}
	return okList(ctx, contacts, page, total)
}

func (api *contactAPI) resolve(ctx echo.Context) error {
	c, err := api.svc.Resolve(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "resolving contact")
	}
	return ok(ctx, c)
}

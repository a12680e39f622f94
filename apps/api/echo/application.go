package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core/application"
	"github.com/tutorly/tutorly/core/contract"
	"github.com/tutorly/tutorly/core/user"
)

type applicationAPI struct {
	svc      application.Service
	validate *validator.Validate
}

func registerApplicationAPI(g *echo.Group, auth, profile echo.MiddlewareFunc, deps ServerDeps) {
	api := applicationAPI{svc: deps.ApplicationSvc, validate: deps.Validate}

	ag := g.Group("/applications", auth, profile)
	ag.GET("", api.queryMine, rolesMiddleware(user.RoleTeacher))
	ag.GET("/:id", api.retrieve)
	ag.POST("/:id/withdraw", api.withdraw, rolesMiddleware(user.RoleTeacher))
	ag.POST("/:id/reject", api.reject, rolesMiddleware(user.RoleParent))
	ag.POST("/:id/accept", api.accept, rolesMiddleware(user.RoleParent))
}

func (api *applicationAPI) queryMine(ctx echo.Context) error {
	filter := new(application.QueryFilter)
	page, err := bindQuery(ctx, filter)
	if err != nil {
		return err
	}
	apps, total, err := api.svc.ListMine(ctx.Request().Context(), contextUser(ctx), filter, bindOrdering(ctx), page)
	if err != nil {
		return errors.Wrap(err, "listing applications")
	}
	return okList(ctx, apps, page, total)
}

func (api *applicationAPI) retrieve(ctx echo.Context) error {
	app, err := api.svc.Get(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting application")
	}
	return ok(ctx, app)
}

func (api *applicationAPI) withdraw(ctx echo.Context) error {
	app, err := api.svc.Withdraw(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "withdrawing application")
	}
	return ok(ctx, app)
}

func (api *applicationAPI) reject(ctx echo.Context) error {
	app, err := api.svc.Reject(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "rejecting application")
	}
	return ok(ctx, app)
}

func (api *applicationAPI) accept(ctx echo.Context) error {
	var data contract.Terms
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to Terms")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	c, err := api.svc.Accept(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "accepting application")
	}
	return created(ctx, c)
}

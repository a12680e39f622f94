package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core/user"
)

type adminAPI struct {
	svc      user.Service
	validate *validator.Validate
}

func registerAdminAPI(g *echo.Group, auth, profile echo.MiddlewareFunc, deps ServerDeps) {
	api := adminAPI{svc: deps.UserSvc, validate: deps.Validate}

	ag := g.Group("/admin/users", auth, profile, adminMiddleware())
	ag.GET("", api.queryUsers)
	ag.GET("/:id", api.retrieveUser)
	ag.PUT("/:id/active", api.setActive)
	ag.PUT("/:id/role", api.setRole)
}

func (api *adminAPI) queryUsers(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	page, err := bindQuery(ctx, filter)
	if err != nil {
		return err
	}
	users, total, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx), page)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return okList(ctx, users, page, total)
}

func (api *adminAPI) retrieveUser(ctx echo.Context) error {
	usr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting user")
	}
	return ok(ctx, usr)
}

func (api *adminAPI) setActive(ctx echo.Context) error {
	var data user.SetActive
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to SetActive")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	usr, err := api.svc.SetActive(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), *data.IsActive)
	if err != nil {
		return errors.Wrap(err, "setting user active")
	}
	return ok(ctx, usr)
}

func (api *adminAPI) setRole(ctx echo.Context) error {
	var data user.SetRole
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to SetRole")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	usr, err := api.svc.SetRole(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data.Role)
	if err != nil {
		return errors.Wrap(err, "setting user role")
	}
	return ok(ctx, usr)
}

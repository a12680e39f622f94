package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core/user"
)

type profileAPI struct {
	svc      user.Service
	validate *validator.Validate
}

func registerProfileAPI(g *echo.Group, auth, profile echo.MiddlewareFunc, deps ServerDeps) {
	api := profileAPI{svc: deps.UserSvc, validate: deps.Validate}

	pg := g.Group("/profile", auth)
	pg.POST("", api.create) // onboarding: the profile does not exist yet

	mg := pg.Group("", profile)
	mg.GET("/me", api.retrieve)
	mg.PUT("/me", api.update)
	mg.GET("/parent", api.retrieveParent, rolesMiddleware(user.RoleParent))
	mg.PUT("/parent", api.updateParent, rolesMiddleware(user.RoleParent))
}

func (api *profileAPI) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data user.NewUser
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), claims.Subject, claims.Email, data)
	if err != nil {
		return errors.Wrap(err, "creating profile")
	}
	return created(ctx, usr)
}

func (api *profileAPI) retrieve(ctx echo.Context) error {
	return ok(ctx, contextUser(ctx))
}

func (api *profileAPI) update(ctx echo.Context) error {
	usr := contextUser(ctx)

	var data user.UpdateUser
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err := data.Validate(usr, api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Update(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ok(ctx, usr)
}

func (api *profileAPI) retrieveParent(ctx echo.Context) error {
	pp, err := api.svc.GetParentProfile(ctx.Request().Context(), contextUser(ctx))
	if err != nil {
		return errors.Wrap(err, "getting parent profile")
	}
	return ok(ctx, pp)
}

func (api *profileAPI) updateParent(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	usr := contextUser(ctx)

	pp, err := api.svc.GetParentProfile(reqCtx, usr)
	if err != nil {
		return errors.Wrap(err, "getting parent profile")
	}
	var data user.UpdateParentProfile
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to UpdateParentProfile")
	}
	if err = data.Validate(pp, api.validate); err != nil {
		return err
	}

	if pp, err = api.svc.UpdateParentProfile(reqCtx, usr, data); err != nil {
		return errors.Wrap(err, "updating parent profile")
	}
	return ok(ctx, pp)
}

package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core/review"
	"github.com/tutorly/tutorly/core/user"
)

type reviewAPI struct {
	svc      review.Service
	validate *validator.Validate
}

func registerReviewAPI(g *echo.Group, auth, profile echo.MiddlewareFunc, deps ServerDeps) {
	api := reviewAPI{svc: deps.ReviewSvc, validate: deps.Validate}

	g.POST("/contracts/:id/review", api.create, auth, profile, rolesMiddleware(user.RoleParent))
	g.DELETE("/reviews/:id", api.destroy, auth, profile, adminMiddleware())
}

func (api *reviewAPI) create(ctx echo.Context) error {
	var data review.NewReview
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	rev, err := api.svc.Create(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating review")
	}
	return created(ctx, rev)
}

func (api *reviewAPI) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), contextUser(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting review")
	}
	return ctx.NoContent(http.StatusNoContent)
}

package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core/student"
	"github.com/tutorly/tutorly/core/user"
)

type studentAPI struct {
	svc      student.Service
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, auth, profile echo.MiddlewareFunc, deps ServerDeps) {
	api := studentAPI{svc: deps.StudentSvc, validate: deps.Validate}

	sg := g.Group("/students", auth, profile, rolesMiddleware(user.RoleParent))
	sg.POST("", api.create)
	sg.GET("", api.list)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

func (api *studentAPI) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	s, err := api.svc.Create(ctx.Request().Context(), contextUser(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return created(ctx, s)
}

func (api *studentAPI) list(ctx echo.Context) error {
	students, err := api.svc.List(ctx.Request().Context(), contextUser(ctx))
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	return ok(ctx, students)
}

func (api *studentAPI) retrieve(ctx echo.Context) error {
	s, err := api.svc.Get(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ok(ctx, s)
}

func (api *studentAPI) update(ctx echo.Context) error {
	var data student.NewStudent
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	s, err := api.svc.Update(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ok(ctx, s)
}

func (api *studentAPI) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), contextUser(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

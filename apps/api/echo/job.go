package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core/application"
	"github.com/tutorly/tutorly/core/job"
	"github.com/tutorly/tutorly/core/user"
)

type jobAPI struct {
	svc      job.Service
	appSvc   application.Service
	validate *validator.Validate
}

func registerJobAPI(g *echo.Group, auth, profile echo.MiddlewareFunc, deps ServerDeps) {
	api := jobAPI{svc: deps.JobSvc, appSvc: deps.ApplicationSvc, validate: deps.Validate}

	jg := g.Group("/jobs", auth, profile)
	jg.GET("", api.query)
	jg.POST("", api.create, rolesMiddleware(user.RoleParent))
	jg.GET("/:id", api.retrieve)
	jg.PUT("/:id", api.update, rolesMiddleware(user.RoleParent))
	jg.DELETE("/:id", api.destroy, rolesMiddleware(user.RoleParent))
	jg.POST("/:id/close", api.close, rolesMiddleware(user.RoleParent))

	jg.POST("/:id/applications", api.apply, rolesMiddleware(user.RoleTeacher))
	jg.GET("/:id/applications", api.queryApplications, rolesMiddleware(user.RoleParent))
}

func (api *jobAPI) query(ctx echo.Context) error {
	filter := new(job.QueryFilter)
	page, err := bindQuery(ctx, filter)
	if err != nil {
		return err
	}
	jobs, total, err := api.svc.Query(ctx.Request().Context(), contextUser(ctx), filter, bindOrdering(ctx), page)
	if err != nil {
		return errors.Wrap(err, "querying jobs")
	}
	return okList(ctx, jobs, page, total)
}

func (api *jobAPI) create(ctx echo.Context) error {
	var data job.NewJob
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewJob")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	j, err := api.svc.Create(ctx.Request().Context(), contextUser(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating job")
	}
	return created(ctx, j)
}

func (api *jobAPI) retrieve(ctx echo.Context) error {
	j, err := api.svc.Get(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting job")
	}
	return ok(ctx, j)
}

func (api *jobAPI) update(ctx echo.Context) error {
	var data job.NewJob
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewJob")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	j, err := api.svc.Update(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating job")
	}
	return ok(ctx, j)
}

func (api *jobAPI) close(ctx echo.Context) error {
	j, err := api.svc.Close(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "closing job")
	}
	return ok(ctx, j)
}

func (api *jobAPI) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), contextUser(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting job")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *jobAPI) apply(ctx echo.Context) error {
	var data application.NewApplication
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewApplication")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	app, err := api.appSvc.Apply(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "applying")
	}
	return created(ctx, app)
}

func (api *jobAPI) queryApplications(ctx echo.Context) error {
	filter := new(application.QueryFilter)
	page, err := bindQuery(ctx, filter)
	if err != nil {
		return err
	}
	apps, total, err := api.appSvc.ListForJob(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), filter, bindOrdering(ctx), page)
	if err != nil {
		return errors.Wrap(err, "listing applications")
	}
	return okList(ctx, apps, page, total)
}

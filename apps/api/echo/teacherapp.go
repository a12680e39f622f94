package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core/teacherapp"
	"github.com/tutorly/tutorly/core/user"
)

type teacherAppAPI struct {
	svc      teacherapp.Service
	validate *validator.Validate
}

func registerTeacherAppAPI(g *echo.Group, auth, profile echo.MiddlewareFunc, deps ServerDeps) {
	api := teacherAppAPI{svc: deps.TeacherAppSvc, validate: deps.Validate}

	tg := g.Group("/teacher-applications", auth, profile, rolesMiddleware(user.RoleTeacher))
	tg.POST("", api.submit)
	tg.GET("/me", api.retrieveMine)

	ag := g.Group("/admin/teacher-applications", auth, profile, adminMiddleware())
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
	ag.POST("/:id/review", api.startReview)
	ag.POST("/:id/interview", api.scheduleInterview)
	ag.POST("/:id/interview-complete", api.completeInterview)
	ag.POST("/:id/approve", api.approve)
	ag.POST("/:id/reject", api.reject)
}

func (api *teacherAppAPI) submit(ctx echo.Context) error {
	var data teacherapp.NewApplication
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewApplication")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	app, err := api.svc.Submit(ctx.Request().Context(), contextUser(ctx), data)
	if err != nil {
		return errors.Wrap(err, "submitting teacher application")
	}
	return created(ctx, app)
}

func (api *teacherAppAPI) retrieveMine(ctx echo.Context) error {
	app, err := api.svc.GetMine(ctx.Request().Context(), contextUser(ctx))
	if err != nil {
		return errors.Wrap(err, "getting teacher application")
	}
	return ok(ctx, app)
}

// Admin

func (api *teacherAppAPI) query(ctx echo.Context) error {
	filter := new(teacherapp.QueryFilter)
	page, err := bindQuery(ctx, filter)
	if err != nil {
		return err
	}
	apps, total, err := api.svc.Query(ctx.Request().Context(), contextUser(ctx), filter, bindOrdering(ctx), page)
	if err != nil {
		return errors.Wrap(err, "querying teacher applications")
	}
	return okList(ctx, apps, page, total)
}

func (api *teacherAppAPI) retrieve(ctx echo.Context) error {
	app, err := api.svc.Get(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting teacher application")
	}
	return ok(ctx, app)
}

func (api *teacherAppAPI) startReview(ctx echo.Context) error {
	app, err := api.svc.StartReview(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "reviewing teacher application")
	}
	return ok(ctx, app)
}

func (api *teacherAppAPI) scheduleInterview(ctx echo.Context) error {
	var data teacherapp.ScheduleInterview
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to ScheduleInterview")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	app, err := api.svc.ScheduleInterview(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "scheduling interview")
	}
	return ok(ctx, app)
}

func (api *teacherAppAPI) completeInterview(ctx echo.Context) error {
	var data teacherapp.CompleteInterview
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to CompleteInterview")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	app, err := api.svc.CompleteInterview(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "completing interview")
	}
	return ok(ctx, app)
}

func (api *teacherAppAPI) approve(ctx echo.Context) error {
	app, err := api.svc.Approve(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "approving teacher application")
	}
	return ok(ctx, app)
}

func (api *teacherAppAPI) reject(ctx echo.Context) error {
	var data teacherapp.Reject
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to Reject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	app, err := api.svc.Reject(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "rejecting teacher application")
	}
	return ok(ctx, app)
}

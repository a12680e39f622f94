package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core/review"
	"github.com/tutorly/tutorly/core/teacher"
	"github.com/tutorly/tutorly/core/user"
)

type teacherAPI struct {
	svc       teacher.Service
	reviewSvc review.Service
	validate  *validator.Validate
}

func registerTeacherAPI(g *echo.Group, auth, profile echo.MiddlewareFunc, deps ServerDeps) {
	api := teacherAPI{svc: deps.TeacherSvc, reviewSvc: deps.ReviewSvc, validate: deps.Validate}

	tg := g.Group("/teachers")

	// authed endpoints
	mg := tg.Group("/me", auth, profile, rolesMiddleware(user.RoleTeacher))
	mg.GET("", api.retrieveMine)
	mg.PUT("", api.updateMine)
	mg.PUT("/subjects", api.setSubjects)
	mg.PUT("/levels", api.setLevels)
	mg.POST("/qualifications", api.addQualification)
	mg.DELETE("/qualifications/:id", api.deleteQualification)

	// public endpoints
	tg.GET("", api.search)
	tg.GET("/:id", api.retrieve)
	tg.GET("/:id/reviews", api.queryReviews)
}

func (api *teacherAPI) search(ctx echo.Context) error {
	filter := new(teacher.QueryFilter)
	page, err := bindQuery(ctx, filter)
	if err != nil {
		return err
	}
	teachers, total, err := api.svc.Search(ctx.Request().Context(), filter, bindOrdering(ctx), page)
	if err != nil {
		return errors.Wrap(err, "searching teachers")
	}
	return okList(ctx, teachers, page, total)
}

func (api *teacherAPI) retrieve(ctx echo.Context) error {
	t, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting teacher")
	}
	return ok(ctx, t)
}

func (api *teacherAPI) queryReviews(ctx echo.Context) error {
	page, err := bindQuery(ctx, nil)
	if err != nil {
		return err
	}
	reviews, total, err := api.reviewSvc.ListForTeacher(ctx.Request().Context(), ctx.Param("id"), page)
	if err != nil {
		return errors.Wrap(err, "listing reviews")
	}
	return okList(ctx, reviews, page, total)
}

func (api *teacherAPI) retrieveMine(ctx echo.Context) error {
	t, err := api.svc.GetMine(ctx.Request().Context(), contextUser(ctx))
	if err != nil {
		return errors.Wrap(err, "getting teacher")
	}
	return ok(ctx, t)
}

func (api *teacherAPI) updateMine(ctx echo.Context) error {
	var data teacher.UpdateTeacher
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	t, err := api.svc.UpdateMine(ctx.Request().Context(), contextUser(ctx), data)
	if err != nil {
		return errors.Wrap(err, "updating teacher")
	}
	return ok(ctx, t)
}

func (api *teacherAPI) setSubjects(ctx echo.Context) error {
	var data teacher.SetSubjects
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to SetSubjects")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	t, err := api.svc.SetSubjects(ctx.Request().Context(), contextUser(ctx), data.Subjects)
	if err != nil {
		return errors.Wrap(err, "setting subjects")
	}
	return ok(ctx, t)
}

func (api *teacherAPI) setLevels(ctx echo.Context) error {
	var data teacher.SetLevels
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to SetLevels")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	t, err := api.svc.SetLevels(ctx.Request().Context(), contextUser(ctx), data.Levels)
	if err != nil {
		return errors.Wrap(err, "setting levels")
	}
	return ok(ctx, t)
}

func (api *teacherAPI) addQualification(ctx echo.Context) error {
	var data teacher.NewQualification
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewQualification")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	q, err := api.svc.AddQualification(ctx.Request().Context(), contextUser(ctx), data)
	if err != nil {
		return errors.Wrap(err, "adding qualification")
	}
	return created(ctx, q)
}

func (api *teacherAPI) deleteQualification(ctx echo.Context) error {
	if err := api.svc.DeleteQualification(ctx.Request().Context(), contextUser(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting qualification")
	}
	return ctx.NoContent(http.StatusNoContent)
}

package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core/class"
	"github.com/tutorly/tutorly/core/contract"
)

type contractAPI struct {
	svc      contract.Service
	classSvc class.Service
	validate *validator.Validate
}

func registerContractAPI(g *echo.Group, auth, profile echo.MiddlewareFunc, deps ServerDeps) {
	api := contractAPI{svc: deps.ContractSvc, classSvc: deps.ClassSvc, validate: deps.Validate}

	cg := g.Group("/contracts", auth, profile)
	cg.GET("", api.queryMine)
	cg.GET("/:id", api.retrieve)
	cg.POST("/:id/complete", api.complete)
	cg.POST("/:id/cancel", api.cancel)
	cg.GET("/:id/classes", api.queryClasses)
	cg.POST("/:id/classes", api.scheduleClass)

	clg := g.Group("/classes", auth, profile)
	clg.GET("/:id", api.retrieveClass)
	clg.PUT("/:id", api.updateClass)
	clg.POST("/:id/complete", api.completeClass)
	clg.POST("/:id/cancel", api.cancelClass)
}

func (api *contractAPI) queryMine(ctx echo.Context) error {
	filter := new(contract.QueryFilter)
	page, err := bindQuery(ctx, filter)
	if err != nil {
		return err
	}
	contracts, total, err := api.svc.ListMine(ctx.Request().Context(), contextUser(ctx), filter, bindOrdering(ctx), page)
	if err != nil {
		return errors.Wrap(err, "listing contracts")
	}
	return okList(ctx, contracts, page, total)
}

func (api *contractAPI) retrieve(ctx echo.Context) error {
	c, err := api.svc.Get(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting contract")
	}
	return ok(ctx, c)
}

func (api *contractAPI) complete(ctx echo.Context) error {
	c, err := api.svc.Complete(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "completing contract")
	}
	return ok(ctx, c)
}

func (api *contractAPI) cancel(ctx echo.Context) error {
	c, err := api.svc.Cancel(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "cancelling contract")
	}
	return ok(ctx, c)
}

// Classes

func (api *contractAPI) queryClasses(ctx echo.Context) error {
	filter := new(class.QueryFilter)
	page, err := bindQuery(ctx, filter)
	if err != nil {
		return err
	}
	classes, total, err := api.classSvc.ListForContract(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), filter, page)
	if err != nil {
		return errors.Wrap(err, "listing classes")
	}
	return okList(ctx, classes, page, total)
}

func (api *contractAPI) scheduleClass(ctx echo.Context) error {
	var data class.NewClass
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	cl, err := api.classSvc.Schedule(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "scheduling class")
	}
	return created(ctx, cl)
}

func (api *contractAPI) retrieveClass(ctx echo.Context) error {
	cl, err := api.classSvc.Get(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting class")
	}
	return ok(ctx, cl)
}

func (api *contractAPI) updateClass(ctx echo.Context) error {
	var data class.UpdateClass
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	cl, err := api.classSvc.Update(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ok(ctx, cl)
}

func (api *contractAPI) completeClass(ctx echo.Context) error {
	cl, err := api.classSvc.Complete(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "completing class")
	}
	return ok(ctx, cl)
}

func (api *contractAPI) cancelClass(ctx echo.Context) error {
	cl, err := api.classSvc.Cancel(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "cancelling class")
	}
	return ok(ctx, cl)
}

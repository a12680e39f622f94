package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core/payment"
)

type paymentAPI struct {
	svc      payment.Service
	validate *validator.Validate
}

func registerPaymentAPI(g *echo.Group, auth, profile echo.MiddlewareFunc, deps ServerDeps) {
	api := paymentAPI{svc: deps.PaymentSvc, validate: deps.Validate}

	g.GET("/contracts/:id/payments", api.queryForContract, auth, profile)
	g.POST("/contracts/:id/payments", api.create, auth, profile)

	pg := g.Group("/payments", auth, profile)
	pg.GET("", api.queryMine)
	pg.GET("/:id", api.retrieve)
	pg.PUT("/:id/status", api.updateStatus)
}

func (api *paymentAPI) queryForContract(ctx echo.Context) error {
	filter := new(payment.QueryFilter)
	page, err := bindQuery(ctx, filter)
	if err != nil {
		return err
	}
	payments, total, err := api.svc.ListForContract(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), filter, page)
	if err != nil {
		return errors.Wrap(err, "listing payments")
	}
	return okList(ctx, payments, page, total)
}

func (api *paymentAPI) queryMine(ctx echo.Context) error {
	filter := new(payment.QueryFilter)
	page, err := bindQuery(ctx, filter)
	if err != nil {
		return err
	}
	payments, total, err := api.svc.ListMine(ctx.Request().Context(), contextUser(ctx), filter, page)
	if err != nil {
		return errors.Wrap(err, "listing payments")
	}
	return okList(ctx, payments, page, total)
}

func (api *paymentAPI) create(ctx echo.Context) error {
	var data payment.NewPayment
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	p, err := api.svc.Create(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating payment")
	}
	return created(ctx, p)
}

func (api *paymentAPI) retrieve(ctx echo.Context) error {
	p, err := api.svc.Get(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting payment")
	}
	return ok(ctx, p)
}

func (api *paymentAPI) updateStatus(ctx echo.Context) error {
	var data payment.UpdateStatus
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	p, err := api.svc.UpdateStatus(ctx.Request().Context(), contextUser(ctx), ctx.Param("id"), data.Status)
	if err != nil {
		return errors.Wrap(err, "updating payment status")
	}
	return ok(ctx, p)
}

package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core/message"
)

type messageAPI struct {
	svc      message.Service
	validate *validator.Validate
}

func registerMessageAPI(g *echo.Group, auth, profile echo.MiddlewareFunc, deps ServerDeps) {
	api := messageAPI{svc: deps.MessageSvc, validate: deps.Validate}

	mg := g.Group("/messages", auth, profile)
	mg.POST("", api.send)
	mg.GET("", api.conversations)
	mg.GET("/:userID", api.conversation)
	mg.POST("/:userID/read", api.markRead)
}

func (api *messageAPI) send(ctx echo.Context) error {
	var data message.NewMessage
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	msg, err := api.svc.Send(ctx.Request().Context(), contextUser(ctx), data)
	if err != nil {
		return errors.Wrap(err, "sending message")
	}
	return created(ctx, msg)
}

func (api *messageAPI) conversations(ctx echo.Context) error {
	convs, err := api.svc.Conversations(ctx.Request().Context(), contextUser(ctx))
	if err != nil {
		return errors.Wrap(err, "listing conversations")
	}
	return ok(ctx, convs)
}

func (api *messageAPI) conversation(ctx echo.Context) error {
	page, err := bindQuery(ctx, nil)
	if err != nil {
		return err
	}
	msgs, total, err := api.svc.Conversation(ctx.Request().Context(), contextUser(ctx), ctx.Param("userID"), page)
	if err != nil {
		return errors.Wrap(err, "getting conversation")
	}
	return okList(ctx, msgs, page, total)
}

func (api *messageAPI) markRead(ctx echo.Context) error {
	receipt, err := api.svc.MarkRead(ctx.Request().Context(), contextUser(ctx), ctx.Param("userID"))
	if err != nil {
		return errors.Wrap(err, "marking messages read")
	}
	return ok(ctx, receipt)
}

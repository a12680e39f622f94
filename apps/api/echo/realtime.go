package echoapi

import (
	"github.com/labstack/echo/v4"
)

func registerRealtimeAPI(g *echo.Group, auth, profile echo.MiddlewareFunc, deps ServerDeps) {
	hub := deps.Hub
	g.GET("/realtime", func(ctx echo.Context) error {
		// a failed upgrade has already written its response
		_ = hub.ServeWS(ctx.Response(), ctx.Request(), contextUser(ctx).ID)
		return nil
	}, auth, profile)
}

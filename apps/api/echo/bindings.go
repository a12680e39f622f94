package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}
	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field != "" {
			ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
		}
	}
}

func bindOrdering(ctx echo.Context) []core.DBOrdering {
	ord := new(Ordering)
	ord.Bind(ctx)
	return ord.Orderings
}

// bindQuery binds the query params to filter and returns the requested page.
func bindQuery(ctx echo.Context, filter interface{}) (core.Page, error) {
	var page core.Page
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &page); err != nil {
		return page, errors.Wrap(err, "binding page")
	}
	if filter != nil {
		if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, filter); err != nil {
			return page, errors.Wrap(err, "binding filter")
		}
	}
	page.Clean()
	return page, nil
}

// bindBody binds the request body to dest, ignoring path & query params.
func bindBody(ctx echo.Context, dest interface{}) error {
	return (&echo.DefaultBinder{}).BindBody(ctx, dest)
}

type (
	successResponse struct {
		Success bool        `json:"success"`
		Data    interface{} `json:"data"`
	}

	listResponse struct {
		Success    bool            `json:"success"`
		Data       interface{}     `json:"data"`
		Pagination core.Pagination `json:"pagination"`
	}
)

func respond(ctx echo.Context, status int, data interface{}) error {
	return ctx.JSON(status, successResponse{Success: true, Data: data})
}

func ok(ctx echo.Context, data interface{}) error {
	return respond(ctx, http.StatusOK, data)
}

func created(ctx echo.Context, data interface{}) error {
	return respond(ctx, http.StatusCreated, data)
}

func okList(ctx echo.Context, data interface{}, page core.Page, total int) error {
	return ctx.JSON(http.StatusOK, listResponse{
		Success:    true,
		Data:       data,
		Pagination: core.NewPagination(page, total),
	})
}

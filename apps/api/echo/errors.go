package echoapi

import (
	"net/http"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorly/tutorly/core"
	"github.com/tutorly/tutorly/core/user"
)

var (
	errProfileRequired    = echo.NewHTTPError(http.StatusForbidden, "complete your profile first")
	errAccountDeactivated = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

type errorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func httpErrorCode(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return core.CodeUnauthorized
	case status == http.StatusNotFound || status == http.StatusMethodNotAllowed:
		return core.CodeNotFound
	case status >= http.StatusInternalServerError:
		return core.CodeDatabase
	default:
		return core.CodeValidation
	}
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var status int
		res := errorResponse{Error: err.Error()}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			status = origErr.Code
			if msg, ok := origErr.Message.(string); ok {
				res.Error = msg
			} else {
				res.Error = http.StatusText(status)
			}
			res.Code = httpErrorCode(status)
		case validator.ValidationErrors:
			status = http.StatusBadRequest
			res.Code = core.CodeValidation
			res.Fields = core.TranslateValidationErrors(origErr, translator)
			res.Error = "invalid data"
		case *core.ValidationError:
			status = http.StatusBadRequest
			res.Code = core.CodeValidation
			if origErr.Fields != nil {
				res.Fields = make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					res.Fields[fErr.Field] = fErr.Error
				}
			}
			res.Error = origErr.Error()
		default:
			switch {
			case core.IsNotFound(cause):
				status = http.StatusNotFound
				res.Code = core.CodeNotFound
				res.Error = cause.Error()
			case cause == core.ErrUnauthorized:
				status = http.StatusUnauthorized
				res.Code = core.CodeUnauthorized
				res.Error = cause.Error()
			case cause == core.ErrForbidden:
				status = http.StatusForbidden
				res.Code = core.CodeUnauthorized
				res.Error = forbiddenMessage(err)
			default: // any other error is a server error
				status = http.StatusInternalServerError
				res.Code = core.CodeDatabase
				msg := http.StatusText(http.StatusInternalServerError)
				if !ctx.Echo().Debug {
					res.Error = msg
				}

				args := []interface{}{errors.Wrap(err, msg)}
				if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
					args = append(args, usr)
				}
				logger.Error(msg, args...)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(status)
			} else {
				err = ctx.JSON(status, res)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// forbiddenMessage keeps the reason a service gave when wrapping core.ErrForbidden.
func forbiddenMessage(err error) string {
	type causer interface{ Cause() error }
	for {
		c, ok := err.(causer)
		if !ok {
			return core.ErrForbidden.Error()
		}
		if c.Cause() == core.ErrForbidden {
			if msg := strings.TrimSuffix(err.Error(), ": "+core.ErrForbidden.Error()); msg != "" {
				return msg
			}
			return core.ErrForbidden.Error()
		}
		err = c.Cause()
	}
}

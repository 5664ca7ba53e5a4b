package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

var (
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errNoFile        = "please choose a file to import"
)

type errorPage struct {
	Code    int
	Message string
}

// formErrors converts validation errors to {field: message}; non-field messages use the "" key.
// ok is false if err is not a validation error.
func formErrors(err error, translator ut.Translator) (fldErrs map[string]string, ok bool) {
	vErr, ok := core.TranslateValidationErrors(errors.Cause(err), translator).(*core.ValidationError)
	if !ok {
		return nil, false
	}
	fldErrs = make(map[string]string, len(vErr.Fields))
	for _, fErr := range vErr.Fields {
		fldErrs[fErr.Field] = fErr.Error
	}
	if len(fldErrs) == 0 {
		fldErrs[""] = vErr.Error()
	}
	return fldErrs, true
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that renders our errors as HTML pages.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = fmt.Sprint(origErr.Message)
		case validator.ValidationErrors, *core.ValidationError:
			code = http.StatusBadRequest
			message = origErr.Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(http.StatusInternalServerError)
			logger.Error(message, errors.Wrap(err, message), sessionUser(ctx))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = render(ctx, code, "error", page{
					Title: http.StatusText(code),
					Data:  errorPage{Code: code, Message: message},
				})
				if err != nil {
					err = ctx.String(code, message)
				}
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

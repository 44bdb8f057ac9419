package echoweb

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core"
	"github.com/coursecatalog/backend/core/course"
	"github.com/coursecatalog/backend/core/image"
)

var errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

type errorPage struct {
	Code    int
	Title   string
	Message string
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler rendering our error page.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
			code = origErr.Code
			if m, ok := origErr.Message.(string); ok {
				message = m
			}
		case validator.ValidationErrors, *core.ValidationError:
			code = http.StatusBadRequest
			message = origErr.Error()
		default:
			switch origErr {
			case course.ErrNotFound, image.ErrNotFound:
				code = http.StatusNotFound
				message = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				message = http.StatusText(code)

				if usr, ok := getContextUser(ctx); ok {
					logger.Error(message, errors.Wrap(err, message), usr)
				} else {
					logger.Error(message, errors.Wrap(err, message))
				}

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
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
				err = ctx.Render(code, "error", page(ctx, errorPage{
					Code:    code,
					Title:   http.StatusText(code),
					Message: message,
				}))
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// formErrors maps form field names to their messages.
// ok is false when err is not a validation error.
func formErrors(err error, translator ut.Translator) (fields map[string]string, ok bool) {
	switch origErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		fields = make(map[string]string, len(origErr))
		for _, vErr := range origErr {
			fields[vErr.Field()] = vErr.Translate(translator)
		}
		return fields, true
	case *core.ValidationError:
		fields = make(map[string]string, len(origErr.Fields))
		for _, fErr := range origErr.Fields {
			fields[fErr.Field] = fErr.Error
		}
		return fields, true
	}
	return nil, false
}

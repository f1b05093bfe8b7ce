package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/school"
	"github.com/trezcool/scorebook/core/statistic"
)

var (
	errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *school.LoadError:
			code = http.StatusBadGateway
			message = echo.Map{"error": origErr.Error(), "collection": origErr.Collection}
		case *statistic.SaveError:
			code = http.StatusBadGateway
			message = echo.Map{"error": origErr.Error(), "stage": origErr.Stage}
		default:
			switch origErr {
			case statistic.ErrNotLoaded:
				code = http.StatusServiceUnavailable
				message = origErr.Error()
			case statistic.ErrStudentNotFound, statistic.ErrSessionNotFound, statistic.ErrUnknownRow, school.ErrNotFound:
				code = http.StatusNotFound
				message = origErr.Error()
			case statistic.ErrSaveInProgress, statistic.ErrInvalidState:
				code = http.StatusConflict
				message = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				logger.Error(msg, errors.Wrap(err, msg), map[string]interface{}{
					"method":    ctx.Request().Method,
					"path":      ctx.Path(),
					"requestId": requestID(ctx),
				})
			}
		}

		// shutting down...
		if core.IsShutdown(err) {
			logger.Error("shutdown requested", err)
			signalShutdown()
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

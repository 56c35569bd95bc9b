package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/synthfhir/synthfhir/pkg/contract"
)

// ErrorHandler renders every error that reaches Echo as {"detail": ...},
// including router 404/405 and recovered panics. Errors that are not
// *echo.HTTPError become a 500 whose detail hides the cause.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = detailText(he.Message, code)
			if he.Internal != nil {
				err = he.Internal
			}
		}
		if code >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("request_id", requestIDOf(c)).Int("status", code).Msg("request failed")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, contract.ErrorBody{Detail: msg})
		}
		if werr != nil {
			logger.Warn().Err(werr).Msg("failed to write error response")
		}
	}
}

func detailText(m any, code int) string {
	switch v := m.(type) {
	case nil:
		return http.StatusText(code)
	case string:
		return v
	case error:
		return v.Error()
	default:
		return fmt.Sprint(v)
	}
}

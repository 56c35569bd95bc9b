package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// maxStackBytes bounds the stack trace attached to a panic log line.
const maxStackBytes = 4 << 10

// Recovery turns a handler panic into a 500 so the error handler can render
// the usual {"detail": ...} body. http.ErrAbortHandler is re-raised for
// net/http to handle.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if e, ok := r.(error); ok && errors.Is(e, http.ErrAbortHandler) {
					panic(r)
				}

				stack := debug.Stack()
				if len(stack) > maxStackBytes {
					stack = stack[:maxStackBytes]
				}
				req := c.Request()
				logger.Error().
					Str("request_id", requestIDOf(c)).
					Str("method", req.Method).
					Str("path", req.URL.Path).
					Interface("panic", r).
					Bytes("stack", stack).
					Msg("handler panicked")

				err = echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error").
					SetInternal(fmt.Errorf("panic: %v", r))
			}()
			return next(c)
		}
	}
}

func requestIDOf(c echo.Context) string {
	if rid, ok := c.Get(RequestIDKey).(string); ok {
		return rid
	}
	return c.Response().Header().Get(RequestIDHeader)
}

package logger

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const headerRequestID = "X-Request-ID"

// ContextKeyUserID is the echo.Context key the auth middleware stores the
// authenticated user id under.
const ContextKeyUserID = "userID"

// EchoMiddleware attaches a request-scoped logger to the request context and
// logs every completed request.
func EchoMiddleware(base *zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			reqID := req.Header.Get(headerRequestID)
			if reqID == "" {
				reqID = uuid.New().String()
			}

			child := base.With().
				Str(FieldRequestID, reqID).
				Str(FieldMethod, req.Method).
				Str(FieldPath, req.URL.Path).
				Str(FieldClientIP, c.RealIP()).
				Logger()

			c.Response().Header().Set(headerRequestID, reqID)
			c.SetRequest(req.WithContext(WithLogger(req.Context(), child)))

			// Resolve the error here so the logged status is the one written.
			if err := next(c); err != nil {
				c.Error(err)
			}

			evt := child.Info().
				Int(FieldStatus, c.Response().Status).
				Float64(FieldLatency, float64(time.Since(start).Milliseconds()))
			if userID, ok := c.Get(ContextKeyUserID).(string); ok && userID != "" {
				evt = evt.Str(FieldUserID, userID)
			}
			evt.Msg("request completed")
			return nil
		}
	}
}

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorHandler renders errors in the response envelope. Internal details
// are only exposed when exposeInternal is set.
func ErrorHandler(exposeInternal bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := statusOf(err, exposeInternal)
		l := logger.Ctx(c.Request().Context())
		if status >= http.StatusInternalServerError {
			l.Error().Err(err).Msg("request failed")
		} else {
			l.Debug().Err(err).Int("status", status).Msg("request rejected")
		}

		body := Envelope{Success: false, Message: message, Timestamp: time.Now().UTC()}
		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			l.Error().Err(writeErr).Msg("failed to write error response")
		}
	}
}

func statusOf(err error, exposeInternal bool) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, fmt.Sprint(httpErr.Message)
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		if exposeInternal {
			return http.StatusInternalServerError, err.Error()
		}
		return http.StatusInternalServerError, "internal server error"
	}

	switch appErr.Kind {
	case apperr.KindValidation, apperr.KindConflict:
		return http.StatusBadRequest, appErr.Message
	case apperr.KindNotFound:
		return http.StatusNotFound, appErr.Message
	case apperr.KindAuthorization:
		return http.StatusForbidden, appErr.Message
	default:
		if exposeInternal {
			return http.StatusInternalServerError, appErr.Error()
		}
		return http.StatusInternalServerError, "internal server error"
	}
}

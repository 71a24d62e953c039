package handlers

import (
	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// actorID resolves the acting user. An authenticated identity wins; a
// claimed userId must then agree with it. Without authentication the
// claimed id is trusted.
func actorID(c echo.Context, claimed string) (string, error) {
	if claimed == "" {
		claimed = c.QueryParam("userId")
	}
	authed, _ := c.Get(logger.ContextKeyUserID).(string)
	switch {
	case authed != "" && claimed != "" && claimed != authed:
		return "", apperr.Forbidden("userId does not match the authenticated user")
	case authed != "":
		return authed, nil
	case claimed != "":
		return claimed, nil
	}
	return "", apperr.Validation("userId is required")
}

// viewerID is like actorID but allows anonymous reads.
func viewerID(c echo.Context) (string, error) {
	id, err := actorID(c, "")
	if apperr.Is(err, apperr.KindValidation) {
		return "", nil
	}
	return id, err
}

// bind decodes the body into req and validates it.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation("invalid request payload")
	}
	return c.Validate(req)
}

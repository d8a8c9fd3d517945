package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hall-booking/internal/logger"
	"github.com/iliyamo/hall-booking/internal/service"
)

// statusFor maps service sentinels onto HTTP status codes and the message
// sent to the client.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, strings.TrimSuffix(err.Error(), ": "+service.ErrConflict.Error())
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, "invalid status transition"
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

// respondError writes err as JSON. Unexpected errors are logged with the
// request logger and reported as an opaque 500.
func respondError(c echo.Context, err error) error {
	code, msg := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.FromContext(c.Request().Context()).Error().Err(err).Msg("request failed")
	}
	return c.JSON(code, echo.Map{"error": msg})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func validationFailed(c echo.Context, fields map[string]string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

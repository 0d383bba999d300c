package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"merry/internal/domain/apperr"
	"merry/pkg/id"
)

const dateLayout = "2006-01-02"

// fail maps domain errors to HTTP codes. Unknown errors are logged and
// hidden behind a 500.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: []FieldError{{Field: "_", Message: apperr.Message(err)}},
		})
	case errors.Is(err, apperr.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: apperr.Message(err)})
	case errors.Is(err, apperr.ErrInvalidState):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: apperr.Message(err)})
	case errors.Is(err, apperr.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: apperr.Message(err)})
	default:
		slog.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "err", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// bindValid binds and validates req. When it returns false the error
// response has already been written.
func bindValid(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// pathID reads a hex32 path parameter.
func pathID(c echo.Context, name string) (string, bool, error) {
	v := c.Param(name)
	if !id.Valid(v) {
		return "", false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name + " path param"})
	}
	return v, true, nil
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func parseDate(s string) time.Time {
	t, _ := time.ParseInLocation(dateLayout, s, time.UTC)
	return t
}

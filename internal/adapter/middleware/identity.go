package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"merry/pkg/id"
)

const (
	HeaderUserID = "X-User-Id"

	identityKey = "merry.identity"
)

// Identity is the caller as asserted by the gateway in front of the API.
// Roles are per chama and resolved from the membership, not from headers.
type Identity struct {
	UserID string
}

// Identify requires X-User-Id on every request it wraps.
func Identify() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			if uid == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing " + HeaderUserID})
			}
			if !id.Valid(uid) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid " + HeaderUserID})
			}
			c.Set(identityKey, Identity{UserID: uid})
			return next(c)
		}
	}
}

// IdentityFrom returns the caller set by Identify, or the zero Identity.
func IdentityFrom(c echo.Context) Identity {
	v, _ := c.Get(identityKey).(Identity)
	return v
}

package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"merry/internal/adapter/middleware"
	"merry/internal/domain/notification"
)

type NotificationHandler struct{ repo notification.Repository }

func NewNotificationHandler(repo notification.Repository) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

// List returns the caller's newest notifications.
func (h *NotificationHandler) List(c echo.Context) error {
	limit, err := queryInt(c, "limit", 50)
	if err != nil || limit <= 0 || limit > 200 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be between 1 and 200"})
	}
	ns, err := h.repo.ListByUser(c.Request().Context(), middleware.IdentityFrom(c).UserID, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"notifications": ns})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	notificationID, ok, err := pathID(c, "notification_id")
	if !ok {
		return err
	}
	err = h.repo.MarkRead(c.Request().Context(), notificationID, middleware.IdentityFrom(c).UserID, time.Now().UTC())
	if err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"github.com/connectly/backend/internal/middleware"
	"github.com/connectly/backend/internal/models"
	"github.com/connectly/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// NotificationHandler serves the per-account notification inbox.
type NotificationHandler struct {
	notifications repositories.NotificationRepository
}

func NewNotificationHandler(notifications repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.ListNotifications)
	g.PUT("/notifications/read-all", h.MarkAllRead)
	g.PUT("/notifications/:id/read", h.MarkRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	page, limit := pageParams(c, 20)

	ctx := c.Request().Context()
	notifications, total, err := h.notifications.GetByRecipient(ctx, accountID, int64((page-1)*limit), int64(limit))
	if err != nil {
		return httpError(err)
	}
	unread, err := h.notifications.CountUnread(ctx, accountID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"notifications": notifications,
		"unread_count":  unread,
		"pagination":    models.NewPagination(page, limit, total),
	})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	if err := h.notifications.MarkRead(c.Request().Context(), id, accountID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	if err := h.notifications.MarkAllRead(c.Request().Context(), accountID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "All notifications marked as read"})
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return err
	}

	if err := h.notifications.DeleteNotification(c.Request().Context(), id, accountID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notification deleted"})
}

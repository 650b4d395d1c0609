package handler

import (
	"net/http"

	"bakerlane-api/internal/dto"
	"bakerlane-api/internal/middleware"
	"bakerlane-api/internal/service"

	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

func (h *NotificationHandler) ListMine(c echo.Context) error {
	notifications, err := h.notificationService.ListMine(c.Request().Context(), middleware.Identity(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	if err := h.notificationService.MarkRead(c.Request().Context(), middleware.Identity(c), c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
}

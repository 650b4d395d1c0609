package handler

import (
	"io"
	"net/http"

	"bakerlane-api/internal/apperr"
	"bakerlane-api/internal/dto"
	"bakerlane-api/internal/middleware"
	"bakerlane-api/internal/service"

	"github.com/labstack/echo/v4"
)

const (
	SignatureHeader = "X-Webhook-Signature"
	EventIDHeader   = "X-Webhook-Event-Id"

	maxWebhookBody = 1 << 20
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

func (h *SubscriptionHandler) CreateSubscription(c echo.Context) error {
	sub, err := h.subscriptionService.CreateSubscription(c.Request().Context(), middleware.Identity(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, sub)
}

func (h *SubscriptionHandler) GetMySubscription(c echo.Context) error {
	sub, err := h.subscriptionService.GetMySubscription(c.Request().Context(), middleware.Identity(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sub)
}

// BillingWebhook needs the raw body; the signature covers its exact bytes.
func (h *SubscriptionHandler) BillingWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return apperr.Validation("cannot read body", nil)
	}

	req := c.Request()
	err = h.subscriptionService.HandleBillingWebhook(req.Context(), req.Header.Get(SignatureHeader), req.Header.Get(EventIDHeader), body)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
}

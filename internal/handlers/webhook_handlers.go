package handlers

import (
	"io"
	"net/http"

	"comandapos/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// maxWebhookBody caps what the billing endpoint will read, matching Stripe's
// own payload limit.
const maxWebhookBody = 64 * 1024

type WebhookHandler struct {
	stripe    services.StripeService
	processor services.BillingEventProcessor
	logger    *zap.Logger
}

func NewWebhookHandler(stripe services.StripeService, processor services.BillingEventProcessor, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{stripe: stripe, processor: processor, logger: logger}
}

// HandleStripe verifies and applies a billing event. A non-2xx response makes
// the sender retry, so persistence failures return 500 and events that can
// never apply return 200.
func (h *WebhookHandler) HandleStripe(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read body"})
	}

	event, err := h.stripe.ConstructEvent(payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("rejected webhook", zap.Error(err))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid webhook signature"})
	}

	if err := h.processor.ProcessEvent(c.Request().Context(), event); err != nil {
		h.logger.Error("failed to process billing event",
			zap.String("type", string(event.Type)),
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to process event"})
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

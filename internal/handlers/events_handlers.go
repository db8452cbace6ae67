package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"comandapos/internal/common"
	"comandapos/internal/notify"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// EventsHandler streams subscription state changes to the tenant's clients
// over server-sent events, so a blocked UI can unlock the moment payment
// clears.
type EventsHandler struct {
	broker notify.Broker
	logger *zap.Logger
}

func NewEventsHandler(broker notify.Broker, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{broker: broker, logger: logger}
}

func (h *EventsHandler) StreamSubscription(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	events, closer, err := h.broker.SubscribeTenant(c.Request().Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to subscribe to tenant events", zap.Error(err))
		return common.SendServerError(c, "Failed to open event stream")
	}
	defer closer()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case event, open := <-events:
			if !open {
				return nil
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "event: subscription\ndata: %s\n\n", data); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

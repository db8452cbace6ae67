package handlers

import (
	"errors"
	"net/http"
	"time"

	"comandapos/internal/common"
	"comandapos/internal/repositories"
	"comandapos/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type SubscriptionHandler struct {
	subscriptions services.SubscriptionService
	access        services.AccessService
	payments      repositories.PaymentRepository
	logger        *zap.Logger
}

func NewSubscriptionHandler(subscriptions services.SubscriptionService, access services.AccessService, payments repositories.PaymentRepository, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions, access: access, payments: payments, logger: logger}
}

func (h *SubscriptionHandler) Get(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	summary, err := h.subscriptions.GetSummary(c.Request().Context(), tenantID, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrTenantNotFound) {
			return common.SendNotFoundError(c, "tenant")
		}
		h.logger.Error("failed to load subscription summary", zap.Error(err))
		return common.SendServerError(c, "Failed to load subscription")
	}
	return c.JSON(http.StatusOK, summary)
}

// Access exposes the gate decision directly so clients can poll their own
// standing without tripping the gate itself.
func (h *SubscriptionHandler) Access(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	status, err := h.access.Evaluate(c.Request().Context(), tenantID, time.Now())
	if err != nil {
		h.logger.Error("failed to evaluate access", zap.Error(err))
		return common.SendServerError(c, "Failed to evaluate access")
	}
	return c.JSON(http.StatusOK, status)
}

// Payments lists the tenant's payment ledger, newest first.
func (h *SubscriptionHandler) Payments(c echo.Context) error {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	payments, err := h.payments.ListByTenant(c.Request().Context(), tenantID, 50, 0)
	if err != nil {
		h.logger.Error("failed to list payments", zap.Error(err))
		return common.SendServerError(c, "Failed to list payments")
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *SubscriptionHandler) CreateCheckout(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	role, ok := common.GetRoleFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	origin := c.Request().Header.Get("Origin")
	session, err := h.subscriptions.CreateCheckout(ctx, tenantID, role, origin)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			return c.JSON(http.StatusForbidden,
				common.CreateErrorResponse("FORBIDDEN", "Only admins can manage billing", nil))
		case errors.Is(err, services.ErrTenantNotFound):
			return common.SendNotFoundError(c, "tenant")
		default:
			h.logger.Error("failed to create checkout session", zap.Error(err))
			return common.SendServerError(c, "Failed to create checkout session")
		}
	}
	return c.JSON(http.StatusOK, session)
}

func (h *SubscriptionHandler) UpdatePrice(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	update, err := h.subscriptions.UpdatePrice(ctx, tenantID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoSubscription):
			return common.SendValidationError(c, "subscription", "no active subscription found")
		case errors.Is(err, services.ErrTenantNotFound):
			return common.SendNotFoundError(c, "tenant")
		default:
			h.logger.Error("failed to update subscription price", zap.Error(err))
			return common.SendServerError(c, "Failed to update subscription price")
		}
	}
	return c.JSON(http.StatusOK, update)
}

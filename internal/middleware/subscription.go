package middleware

import (
	"net/http"
	"strings"
	"time"

	"comandapos/internal/common"
	"comandapos/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Paths that must stay reachable while a tenant is blocked, or the tenant
// could never pay its way back in.
var exemptPrefixes = []string{
	"/v1/subscription",
	"/v1/auth",
	"/webhooks",
	"/health",
}

// SubscriptionGate blocks requests from tenants whose subscription no longer
// grants access. Access is re-evaluated on every request so a webhook that
// reactivates a tenant takes effect immediately.
type SubscriptionGate struct {
	access services.AccessService
	logger *zap.Logger
}

func NewSubscriptionGate(access services.AccessService, logger *zap.Logger) *SubscriptionGate {
	return &SubscriptionGate{access: access, logger: logger}
}

func (g *SubscriptionGate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, prefix := range exemptPrefixes {
				if strings.HasPrefix(path, prefix) {
					return next(c)
				}
			}

			tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
			if !ok {
				return common.SendUnauthorizedError(c)
			}

			status, err := g.access.Evaluate(c.Request().Context(), tenantID, time.Now())
			if err != nil {
				g.logger.Error("subscription gate evaluation failed",
					zap.String("tenant_id", tenantID.String()),
					zap.Error(err),
				)
				return common.SendServerError(c, "Failed to verify subscription")
			}

			if status.RequiresPayment {
				return c.JSON(http.StatusPaymentRequired, map[string]string{
					"error":    "payment required",
					"status":   string(status.SubscriptionStatus),
					"redirect": "/payment-required",
				})
			}
			return next(c)
		}
	}
}

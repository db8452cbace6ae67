package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"comandapos/internal/common"
	"comandapos/internal/models"
	"comandapos/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubAccessService struct {
	status *services.AccessStatus
	err    error
}

func (s *stubAccessService) Evaluate(ctx context.Context, tenantID uuid.UUID, now time.Time) (*services.AccessStatus, error) {
	return s.status, s.err
}

func gateRequest(t *testing.T, access services.AccessService, path string, withTenant bool) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if withTenant {
		ctx := context.WithValue(req.Context(), common.TenantIDKey, uuid.New())
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)

	gate := NewSubscriptionGate(access, zap.NewNop())
	handler := gate.Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	assert.NoError(t, handler(c))
	return rec
}

func TestGateBlocksInactiveTenant(t *testing.T) {
	access := &stubAccessService{status: &services.AccessStatus{
		IsActive:           false,
		RequiresPayment:    true,
		SubscriptionStatus: models.StatusPastDue,
	}}

	rec := gateRequest(t, access, "/v1/comandas", true)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, rec.Body.String(), "payment required")
	assert.Contains(t, rec.Body.String(), "/payment-required")
}

func TestGateAllowsActiveTenant(t *testing.T) {
	access := &stubAccessService{status: &services.AccessStatus{
		IsActive:           true,
		SubscriptionStatus: models.StatusActive,
	}}

	rec := gateRequest(t, access, "/v1/comandas", true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateExemptsBillingPaths(t *testing.T) {
	// Evaluation would block; exempt paths must never reach it.
	access := &stubAccessService{status: &services.AccessStatus{
		RequiresPayment:    true,
		SubscriptionStatus: models.StatusUnpaid,
	}}

	for _, path := range []string{"/v1/subscription", "/v1/subscription/checkout", "/webhooks/stripe", "/health", "/v1/auth/login"} {
		rec := gateRequest(t, access, path, true)
		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}
}

func TestGateFailsClosedOnEvaluationError(t *testing.T) {
	access := &stubAccessService{err: assert.AnError}

	rec := gateRequest(t, access, "/v1/products", true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGateRequiresIdentity(t *testing.T) {
	access := &stubAccessService{status: &services.AccessStatus{IsActive: true}}

	rec := gateRequest(t, access, "/v1/products", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

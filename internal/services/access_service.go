package services

import (
	"context"
	"errors"
	"math"
	"time"

	"comandapos/internal/models"
	"comandapos/internal/notify"
	"comandapos/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// AccessStatus is the per-request answer to "may this tenant use the system".
type AccessStatus struct {
	IsActive           bool                      `json:"isActive"`
	RequiresPayment    bool                      `json:"requiresPayment"`
	SubscriptionStatus models.SubscriptionStatus `json:"subscriptionStatus"`
	DaysUntilDue       *int                      `json:"daysUntilDue"`
}

// AccessService evaluates a tenant's subscription gate. Evaluation is cheap
// and re-run on every request; its only side effect is the lazy trial-expiry
// sweep.
type AccessService interface {
	Evaluate(ctx context.Context, tenantID uuid.UUID, now time.Time) (*AccessStatus, error)
}

type accessService struct {
	tenantRepo repositories.TenantRepository
	broker     notify.Broker
	logger     *zap.Logger
}

func NewAccessService(tenantRepo repositories.TenantRepository, broker notify.Broker, logger *zap.Logger) AccessService {
	return &accessService{
		tenantRepo: tenantRepo,
		broker:     broker,
		logger:     logger,
	}
}

// ceilDays rounds the remaining time up to whole days, matching how the due
// date is shown to the tenant ("3 days left" at 2.1 days remaining).
func ceilDays(until time.Time, now time.Time) int {
	return int(math.Ceil(until.Sub(now).Hours() / 24))
}

func (s *accessService) Evaluate(ctx context.Context, tenantID uuid.UUID, now time.Time) (*AccessStatus, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &AccessStatus{
				IsActive:           false,
				RequiresPayment:    true,
				SubscriptionStatus: models.StatusNotFound,
				DaysUntilDue:       nil,
			}, nil
		}
		return nil, err
	}

	var daysUntilDue *int
	switch {
	case tenant.CurrentPeriodEnd != nil:
		// A tenant that has ever had a paid period counts days against it,
		// even if the trial fields are still populated.
		days := ceilDays(*tenant.CurrentPeriodEnd, now)
		daysUntilDue = &days
	case tenant.TrialEndsAt != nil:
		days := ceilDays(*tenant.TrialEndsAt, now)
		daysUntilDue = &days

		if days < 0 && tenant.SubscriptionStatus == models.StatusTrial && tenant.StripeSubscriptionID == nil {
			return s.expireTrial(ctx, tenant, days)
		}
	}

	return &AccessStatus{
		IsActive:           tenant.IsActive,
		RequiresPayment:    !tenant.IsActive,
		SubscriptionStatus: tenant.SubscriptionStatus,
		DaysUntilDue:       daysUntilDue,
	}, nil
}

// expireTrial persists the UNPAID transition and reports the transient
// TRIAL_EXPIRED label. Later evaluations read back the persisted UNPAID row
// and skip the sweep.
func (s *accessService) expireTrial(ctx context.Context, tenant *models.Tenant, days int) (*AccessStatus, error) {
	expired, err := s.tenantRepo.ExpireTrial(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	if expired {
		s.logger.Info("trial expired, tenant blocked",
			zap.String("tenant_id", tenant.ID.String()),
			zap.Int("days_overdue", -days),
		)
		s.publish(ctx, tenant.ID, models.StatusUnpaid, false)
	}

	return &AccessStatus{
		IsActive:           false,
		RequiresPayment:    true,
		SubscriptionStatus: models.StatusTrialExpired,
		DaysUntilDue:       &days,
	}, nil
}

func (s *accessService) publish(ctx context.Context, tenantID uuid.UUID, status models.SubscriptionStatus, isActive bool) {
	event := notify.SubscriptionEvent{
		TenantID:   tenantID.String(),
		Status:     string(status),
		IsActive:   isActive,
		OccurredAt: time.Now(),
	}
	if err := s.broker.PublishSubscriptionEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish subscription event", zap.Error(err))
	}
}

// ShouldShowPaymentNotice reports whether the renewal warning should be
// surfaced: due within 3 days but not yet overdue.
func ShouldShowPaymentNotice(daysUntilDue *int) bool {
	if daysUntilDue == nil {
		return false
	}
	return *daysUntilDue <= 3 && *daysUntilDue >= 0
}

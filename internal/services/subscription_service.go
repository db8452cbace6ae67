package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"comandapos/internal/models"
	"comandapos/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const defaultOrigin = "http://localhost:3000"

// SubscriptionSummary is the billing view returned to the tenant's admin.
type SubscriptionSummary struct {
	Status              models.SubscriptionStatus `json:"status"`
	IsActive            bool                      `json:"isActive"`
	TrialEndsAt         *time.Time                `json:"trialEndsAt"`
	CurrentPeriodEnd    *time.Time                `json:"currentPeriodEnd"`
	DaysUntilDue        *int                      `json:"daysUntilDue"`
	PaymentDueSoon      bool                      `json:"paymentDueSoon"`
	CurrentPriceInCents int64                     `json:"currentPriceInCents"`
	TotalUsers          int                       `json:"totalUsers"`
	NonAdminUsers       int                       `json:"nonAdminUsers"`
	Subscription        *models.Subscription      `json:"subscription"`
}

// PriceUpdate describes the outcome of re-pricing a live subscription.
type PriceUpdate struct {
	NewPriceInCents    int64  `json:"newPriceInCents"`
	UserCount          int    `json:"userCount"`
	SubscriptionStatus string `json:"subscriptionStatus"`
}

type SubscriptionService interface {
	CreateCheckout(ctx context.Context, tenantID uuid.UUID, role, origin string) (*CheckoutSession, error)
	UpdatePrice(ctx context.Context, tenantID uuid.UUID) (*PriceUpdate, error)
	GetSummary(ctx context.Context, tenantID uuid.UUID, now time.Time) (*SubscriptionSummary, error)
}

type subscriptionService struct {
	tenantRepo       repositories.TenantRepository
	userRepo         repositories.UserRepository
	subscriptionRepo repositories.SubscriptionRepository
	stripe           StripeService
	pricing          Pricing
	trialDays        int
	logger           *zap.Logger
}

func NewSubscriptionService(
	tenantRepo repositories.TenantRepository,
	userRepo repositories.UserRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	stripe StripeService,
	pricing Pricing,
	trialDays int,
	logger *zap.Logger,
) SubscriptionService {
	return &subscriptionService{
		tenantRepo:       tenantRepo,
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		stripe:           stripe,
		pricing:          pricing,
		trialDays:        trialDays,
		logger:           logger,
	}
}

// includeTrial decides whether a checkout offers trial days. Anyone who has
// already consumed or forfeited a trial pays from day one.
func includeTrial(status models.SubscriptionStatus) bool {
	switch status {
	case models.StatusTrial, models.StatusPastDue, models.StatusCanceled, models.StatusUnpaid:
		return false
	}
	return true
}

func (s *subscriptionService) CreateCheckout(ctx context.Context, tenantID uuid.UUID, role, origin string) (*CheckoutSession, error) {
	if role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	customerID, err := s.ensureCustomer(ctx, tenant)
	if err != nil {
		return nil, err
	}

	totalUsers, err := s.userRepo.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	priceInCents := s.pricing.CalculatePrice(totalUsers)

	if origin == "" {
		origin = defaultOrigin
	}
	successURL := origin + "/?payment=success"
	cancelURL := origin + "/?payment=cancelled"

	trialDays := int64(0)
	if includeTrial(tenant.SubscriptionStatus) {
		trialDays = int64(s.trialDays)
	}

	session, err := s.stripe.CreateCheckoutSession(customerID, priceInCents, tenantID.String(), successURL, cancelURL, trialDays)
	if err != nil {
		return nil, err
	}

	s.logger.Info("checkout session created",
		zap.String("tenant_id", tenantID.String()),
		zap.Int64("price_in_cents", priceInCents),
		zap.Int64("trial_days", trialDays),
	)
	return session, nil
}

// ensureCustomer provisions the billing customer on first checkout. Two
// concurrent first checkouts may both create a customer; the last write wins
// and the orphan is harmless.
func (s *subscriptionService) ensureCustomer(ctx context.Context, tenant *models.Tenant) (string, error) {
	if tenant.StripeCustomerID != nil && *tenant.StripeCustomerID != "" {
		return *tenant.StripeCustomerID, nil
	}

	customerID, err := s.stripe.CreateCustomer(tenant.ID.String(), tenant.Name, tenant.OwnerEmail)
	if err != nil {
		return "", err
	}
	if err := s.tenantRepo.SetStripeCustomerID(ctx, tenant.ID, customerID); err != nil {
		return "", err
	}
	return customerID, nil
}

func (s *subscriptionService) UpdatePrice(ctx context.Context, tenantID uuid.UUID) (*PriceUpdate, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	if tenant.StripeSubscriptionID == nil || *tenant.StripeSubscriptionID == "" {
		return nil, ErrNoSubscription
	}

	totalUsers, err := s.userRepo.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	newPrice := s.pricing.CalculatePrice(totalUsers)

	status, err := s.stripe.UpdateSubscriptionPrice(*tenant.StripeSubscriptionID, newPrice)
	if err != nil {
		return nil, err
	}

	// The remote price change already happened; surfacing the error makes the
	// caller retry until the history row records the new price and headcount.
	if err := s.subscriptionRepo.UpdatePricingByStripeID(ctx, *tenant.StripeSubscriptionID, newPrice, totalUsers); err != nil {
		return nil, fmt.Errorf("failed to record new subscription pricing: %w", err)
	}

	s.logger.Info("subscription re-priced",
		zap.String("tenant_id", tenantID.String()),
		zap.Int64("new_price_in_cents", newPrice),
		zap.Int("user_count", totalUsers),
	)
	return &PriceUpdate{
		NewPriceInCents:    newPrice,
		UserCount:          totalUsers,
		SubscriptionStatus: status,
	}, nil
}

func (s *subscriptionService) GetSummary(ctx context.Context, tenantID uuid.UUID, now time.Time) (*SubscriptionSummary, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	totalUsers, err := s.userRepo.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// The summary prices seats as non-admin users plus one, so the first
	// admin is the included seat regardless of how many admins exist.
	nonAdmins, err := s.userRepo.CountNonAdmins(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	priceInCents := s.pricing.CalculatePrice(nonAdmins + 1)

	var latest *models.Subscription
	sub, err := s.subscriptionRepo.GetLatestByTenant(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	} else {
		latest = sub
	}

	var daysUntilDue *int
	switch {
	case tenant.CurrentPeriodEnd != nil:
		days := ceilDays(*tenant.CurrentPeriodEnd, now)
		daysUntilDue = &days
	case tenant.TrialEndsAt != nil:
		days := ceilDays(*tenant.TrialEndsAt, now)
		daysUntilDue = &days
	}

	return &SubscriptionSummary{
		Status:              tenant.SubscriptionStatus,
		IsActive:            tenant.IsActive,
		TrialEndsAt:         tenant.TrialEndsAt,
		CurrentPeriodEnd:    tenant.CurrentPeriodEnd,
		DaysUntilDue:        daysUntilDue,
		PaymentDueSoon:      ShouldShowPaymentNotice(daysUntilDue),
		CurrentPriceInCents: priceInCents,
		TotalUsers:          totalUsers,
		NonAdminUsers:       nonAdmins,
		Subscription:        latest,
	}, nil
}

package repositories

import (
	"context"
	"time"

	"comandapos/internal/models"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *models.Subscription) error
	GetLatestByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error)
	UpdateByStripeID(ctx context.Context, subscriptionID string, status models.SubscriptionStatus, periodEnd *time.Time, priceInCents int64, userCount int) error
	UpdateStatusByStripeID(ctx context.Context, subscriptionID string, status models.SubscriptionStatus) error
	UpdatePricingByStripeID(ctx context.Context, subscriptionID string, priceInCents int64, userCount int) error
}

type subscriptionRepo struct {
	db Database
}

func NewSubscriptionRepo(db Database) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

func (r *subscriptionRepo) Create(ctx context.Context, subscription *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, tenant_id, stripe_subscription_id, status, current_period_start, current_period_end, price_in_cents, user_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		subscription.ID, subscription.TenantID, subscription.StripeSubscriptionID,
		subscription.Status, subscription.CurrentPeriodStart, subscription.CurrentPeriodEnd,
		subscription.PriceInCents, subscription.UserCount,
	)
	return err
}

func (r *subscriptionRepo) GetLatestByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	subscription := &models.Subscription{}
	query := `
		SELECT id, tenant_id, stripe_subscription_id, status, current_period_start, current_period_end, price_in_cents, user_count, created_at, updated_at
		FROM subscriptions
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, query, tenantID).Scan(
		&subscription.ID, &subscription.TenantID, &subscription.StripeSubscriptionID,
		&subscription.Status, &subscription.CurrentPeriodStart, &subscription.CurrentPeriodEnd,
		&subscription.PriceInCents, &subscription.UserCount,
		&subscription.CreatedAt, &subscription.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return subscription, nil
}

// UpdateByStripeID refreshes the history row for a live subscription. A nil
// periodEnd leaves the stored period end untouched.
func (r *subscriptionRepo) UpdateByStripeID(ctx context.Context, subscriptionID string, status models.SubscriptionStatus, periodEnd *time.Time, priceInCents int64, userCount int) error {
	query := `
		UPDATE subscriptions
		SET status = $1, current_period_end = COALESCE($2, current_period_end), price_in_cents = $3, user_count = $4, updated_at = NOW()
		WHERE stripe_subscription_id = $5
	`
	_, err := r.db.Exec(ctx, query, status, periodEnd, priceInCents, userCount, subscriptionID)
	return err
}

func (r *subscriptionRepo) UpdateStatusByStripeID(ctx context.Context, subscriptionID string, status models.SubscriptionStatus) error {
	query := `UPDATE subscriptions SET status = $1, updated_at = NOW() WHERE stripe_subscription_id = $2`
	_, err := r.db.Exec(ctx, query, status, subscriptionID)
	return err
}

func (r *subscriptionRepo) UpdatePricingByStripeID(ctx context.Context, subscriptionID string, priceInCents int64, userCount int) error {
	query := `UPDATE subscriptions SET price_in_cents = $1, user_count = $2, updated_at = NOW() WHERE stripe_subscription_id = $3`
	_, err := r.db.Exec(ctx, query, priceInCents, userCount, subscriptionID)
	return err
}

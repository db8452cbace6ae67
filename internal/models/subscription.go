package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is one billing history entry for a tenant. The most recent
// row by creation time represents the current subscription.
type Subscription struct {
	ID                   uuid.UUID          `json:"id" db:"id"`
	TenantID             uuid.UUID          `json:"tenant_id" db:"tenant_id"`
	StripeSubscriptionID string             `json:"stripe_subscription_id" db:"stripe_subscription_id"`
	Status               SubscriptionStatus `json:"status" db:"status"`
	CurrentPeriodStart   time.Time          `json:"current_period_start" db:"current_period_start"`
	CurrentPeriodEnd     *time.Time         `json:"current_period_end" db:"current_period_end"`
	PriceInCents         int64              `json:"price_in_cents" db:"price_in_cents"`
	UserCount            int                `json:"user_count" db:"user_count"`
	CreatedAt            time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at" db:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the closed set of billing states a tenant can be in.
type SubscriptionStatus string

const (
	StatusTrial    SubscriptionStatus = "TRIAL"
	StatusActive   SubscriptionStatus = "ACTIVE"
	StatusPastDue  SubscriptionStatus = "PAST_DUE"
	StatusCanceled SubscriptionStatus = "CANCELED"
	StatusUnpaid   SubscriptionStatus = "UNPAID"

	// Reporting-only values. Never written to the tenants table.
	StatusNotFound     SubscriptionStatus = "NOT_FOUND"
	StatusTrialExpired SubscriptionStatus = "TRIAL_EXPIRED"
)

type Tenant struct {
	ID                   uuid.UUID          `json:"id" db:"id"`
	Name                 string             `json:"name" db:"name"`
	OwnerEmail           string             `json:"owner_email" db:"owner_email"`
	StripeCustomerID     *string            `json:"stripe_customer_id" db:"stripe_customer_id"`
	StripeSubscriptionID *string            `json:"stripe_subscription_id" db:"stripe_subscription_id"`
	SubscriptionStatus   SubscriptionStatus `json:"subscription_status" db:"subscription_status"`
	IsActive             bool               `json:"is_active" db:"is_active"`
	TrialEndsAt          *time.Time         `json:"trial_ends_at" db:"trial_ends_at"`
	CurrentPeriodEnd     *time.Time         `json:"current_period_end" db:"current_period_end"`
	CreatedAt            time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at" db:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Payment is an append-only ledger entry, one per processed invoice event.
type Payment struct {
	ID                    uuid.UUID     `json:"id" db:"id"`
	TenantID              uuid.UUID     `json:"tenant_id" db:"tenant_id"`
	StripeInvoiceID       string        `json:"stripe_invoice_id" db:"stripe_invoice_id"`
	StripePaymentIntentID *string       `json:"stripe_payment_intent_id" db:"stripe_payment_intent_id"`
	AmountInCents         int64         `json:"amount_in_cents" db:"amount_in_cents"`
	Status                PaymentStatus `json:"status" db:"status"`
	PaidAt                *time.Time    `json:"paid_at" db:"paid_at"`
	FailedAt              *time.Time    `json:"failed_at" db:"failed_at"`
	CreatedAt             time.Time     `json:"created_at" db:"created_at"`
}

package repositories

import (
	"context"

	"comandapos/internal/models"

	"github.com/google/uuid"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Payment, error)
}

type paymentRepo struct {
	db Database
}

func NewPaymentRepo(db Database) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (id, tenant_id, stripe_invoice_id, stripe_payment_intent_id, amount_in_cents, status, paid_at, failed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := r.db.Exec(ctx, query,
		payment.ID, payment.TenantID, payment.StripeInvoiceID, payment.StripePaymentIntentID,
		payment.AmountInCents, payment.Status, payment.PaidAt, payment.FailedAt,
	)
	return err
}

func (r *paymentRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Payment, error) {
	query := `
		SELECT id, tenant_id, stripe_invoice_id, stripe_payment_intent_id, amount_in_cents, status, paid_at, failed_at, created_at
		FROM payments
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		if err := rows.Scan(&payment.ID, &payment.TenantID, &payment.StripeInvoiceID, &payment.StripePaymentIntentID, &payment.AmountInCents, &payment.Status, &payment.PaidAt, &payment.FailedAt, &payment.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

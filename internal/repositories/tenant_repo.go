package repositories

import (
	"context"
	"time"

	"comandapos/internal/models"

	"github.com/google/uuid"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.Tenant, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
	SetStripeSubscriptionID(ctx context.Context, id uuid.UUID, subscriptionID string) error
	AttachSubscription(ctx context.Context, id uuid.UUID, subscriptionID string, status models.SubscriptionStatus, isActive bool, periodEnd *time.Time) error
	UpdateSubscriptionState(ctx context.Context, id uuid.UUID, status models.SubscriptionStatus, isActive bool, periodEnd *time.Time) error
	ExpireTrial(ctx context.Context, id uuid.UUID) (bool, error)
	ListExpiredTrialIDs(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
}

type tenantRepo struct {
	db Database
}

func NewTenantRepo(db Database) TenantRepository {
	return &tenantRepo{db: db}
}

const tenantColumns = `id, name, owner_email, stripe_customer_id, stripe_subscription_id, subscription_status, is_active, trial_ends_at, current_period_end, created_at, updated_at`

func scanTenant(row interface{ Scan(dest ...any) error }) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	err := row.Scan(
		&tenant.ID, &tenant.Name, &tenant.OwnerEmail,
		&tenant.StripeCustomerID, &tenant.StripeSubscriptionID,
		&tenant.SubscriptionStatus, &tenant.IsActive,
		&tenant.TrialEndsAt, &tenant.CurrentPeriodEnd,
		&tenant.CreatedAt, &tenant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, owner_email, subscription_status, is_active, trial_ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, tenant.ID, tenant.Name, tenant.OwnerEmail, tenant.SubscriptionStatus, tenant.IsActive, tenant.TrialEndsAt)
	return err
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	return scanTenant(r.db.QueryRow(ctx, query, id))
}

func (r *tenantRepo) GetByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE stripe_subscription_id = $1`
	return scanTenant(r.db.QueryRow(ctx, query, subscriptionID))
}

func (r *tenantRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	query := `UPDATE tenants SET name = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, name, id)
	return err
}

func (r *tenantRepo) SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	query := `UPDATE tenants SET stripe_customer_id = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, customerID, id)
	return err
}

func (r *tenantRepo) SetStripeSubscriptionID(ctx context.Context, id uuid.UUID, subscriptionID string) error {
	query := `UPDATE tenants SET stripe_subscription_id = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, subscriptionID, id)
	return err
}

// AttachSubscription records the first billing subscription for a tenant in a
// single statement so status and activation never drift apart. A nil periodEnd
// leaves the stored period end untouched.
func (r *tenantRepo) AttachSubscription(ctx context.Context, id uuid.UUID, subscriptionID string, status models.SubscriptionStatus, isActive bool, periodEnd *time.Time) error {
	query := `
		UPDATE tenants
		SET stripe_subscription_id = $1, subscription_status = $2, is_active = $3, current_period_end = COALESCE($4, current_period_end), updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, subscriptionID, status, isActive, periodEnd, id)
	return err
}

// UpdateSubscriptionState transitions status and activation atomically. A nil
// periodEnd leaves the stored period end untouched.
func (r *tenantRepo) UpdateSubscriptionState(ctx context.Context, id uuid.UUID, status models.SubscriptionStatus, isActive bool, periodEnd *time.Time) error {
	query := `
		UPDATE tenants
		SET subscription_status = $1, is_active = $2, current_period_end = COALESCE($3, current_period_end), updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, status, isActive, periodEnd, id)
	return err
}

// ExpireTrial blocks a tenant whose trial ran out. The guard on
// stripe_subscription_id keeps the sweep from racing a checkout that
// completed between the read and this write.
func (r *tenantRepo) ExpireTrial(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE tenants
		SET subscription_status = $1, is_active = false, updated_at = NOW()
		WHERE id = $2 AND stripe_subscription_id IS NULL
	`
	tag, err := r.db.Exec(ctx, query, models.StatusUnpaid, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *tenantRepo) ListExpiredTrialIDs(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM tenants
		WHERE is_active = true
		  AND trial_ends_at < $1
		  AND current_period_end IS NULL
		  AND stripe_subscription_id IS NULL
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

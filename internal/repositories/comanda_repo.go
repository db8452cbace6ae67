package repositories

import (
	"context"
	"time"

	"comandapos/internal/models"

	"github.com/google/uuid"
)

type ComandaRepository interface {
	Create(ctx context.Context, comanda *models.Comanda) error
	AddItem(ctx context.Context, item *models.ComandaItem) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Comanda, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Comanda, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
	IncrementTotal(ctx context.Context, tenantID, id uuid.UUID, deltaInCents int64) error
	DailyRevenue(ctx context.Context, tenantID uuid.UUID, day time.Time) (int64, int, error)
}

type comandaRepo struct {
	db Database
}

func NewComandaRepo(db Database) ComandaRepository {
	return &comandaRepo{db: db}
}

func (r *comandaRepo) Create(ctx context.Context, comanda *models.Comanda) error {
	query := `
		INSERT INTO comandas (id, tenant_id, table_number, status, total_in_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	if _, err := r.db.Exec(ctx, query, comanda.ID, comanda.TenantID, comanda.TableNumber, comanda.Status, comanda.TotalInCents); err != nil {
		return err
	}
	for _, item := range comanda.Items {
		if err := r.AddItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (r *comandaRepo) AddItem(ctx context.Context, item *models.ComandaItem) error {
	query := `
		INSERT INTO comanda_items (id, comanda_id, product_id, quantity, unit_price_in_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.ComandaID, item.ProductID, item.Quantity, item.UnitPriceInCents)
	return err
}

func (r *comandaRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Comanda, error) {
	comanda := &models.Comanda{}
	query := `
		SELECT id, tenant_id, table_number, status, total_in_cents, created_at, updated_at
		FROM comandas
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&comanda.ID, &comanda.TenantID, &comanda.TableNumber, &comanda.Status, &comanda.TotalInCents, &comanda.CreatedAt, &comanda.UpdatedAt)
	if err != nil {
		return nil, err
	}
	items, err := r.listItems(ctx, comanda.ID)
	if err != nil {
		return nil, err
	}
	comanda.Items = items
	return comanda, nil
}

func (r *comandaRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Comanda, error) {
	query := `
		SELECT id, tenant_id, table_number, status, total_in_cents, created_at, updated_at
		FROM comandas
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comandas []*models.Comanda
	for rows.Next() {
		comanda := &models.Comanda{}
		if err := rows.Scan(&comanda.ID, &comanda.TenantID, &comanda.TableNumber, &comanda.Status, &comanda.TotalInCents, &comanda.CreatedAt, &comanda.UpdatedAt); err != nil {
			return nil, err
		}
		comandas = append(comandas, comanda)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, comanda := range comandas {
		items, err := r.listItems(ctx, comanda.ID)
		if err != nil {
			return nil, err
		}
		comanda.Items = items
	}
	return comandas, nil
}

func (r *comandaRepo) listItems(ctx context.Context, comandaID uuid.UUID) ([]*models.ComandaItem, error) {
	query := `
		SELECT ci.id, ci.comanda_id, ci.product_id, p.name, ci.quantity, ci.unit_price_in_cents, ci.created_at
		FROM comanda_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.comanda_id = $1
		ORDER BY ci.created_at ASC
	`
	rows, err := r.db.Query(ctx, query, comandaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.ComandaItem
	for rows.Next() {
		item := &models.ComandaItem{}
		if err := rows.Scan(&item.ID, &item.ComandaID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPriceInCents, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *comandaRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	query := `UPDATE comandas SET status = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	_, err := r.db.Exec(ctx, query, status, tenantID, id)
	return err
}

func (r *comandaRepo) IncrementTotal(ctx context.Context, tenantID, id uuid.UUID, deltaInCents int64) error {
	query := `UPDATE comandas SET total_in_cents = total_in_cents + $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`
	_, err := r.db.Exec(ctx, query, deltaInCents, tenantID, id)
	return err
}

// DailyRevenue sums paid comandas for the calendar day containing the given
// instant. Returns total cents and the number of paid comandas.
func (r *comandaRepo) DailyRevenue(ctx context.Context, tenantID uuid.UUID, day time.Time) (int64, int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var total int64
	var count int
	query := `
		SELECT COALESCE(SUM(total_in_cents), 0), COUNT(*)
		FROM comandas
		WHERE tenant_id = $1 AND status = $2 AND updated_at >= $3 AND updated_at < $4
	`
	err := r.db.QueryRow(ctx, query, tenantID, models.ComandaPaid, start, end).Scan(&total, &count)
	return total, count, err
}

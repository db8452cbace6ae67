package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ComandaOpen     = "OPEN"
	ComandaClosed   = "CLOSED"
	ComandaPaid     = "PAID"
	ComandaCanceled = "CANCELED"
)

// ValidComandaStatus reports whether status is one of the known comanda states.
func ValidComandaStatus(status string) bool {
	switch status {
	case ComandaOpen, ComandaClosed, ComandaPaid, ComandaCanceled:
		return true
	}
	return false
}

// Comanda is a table tab: a running order for one table, settled when paid.
type Comanda struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	TenantID     uuid.UUID      `json:"tenant_id" db:"tenant_id"`
	TableNumber  int            `json:"table_number" db:"table_number"`
	Status       string         `json:"status" db:"status"`
	TotalInCents int64          `json:"total_in_cents" db:"total_in_cents"`
	Items        []*ComandaItem `json:"items,omitempty" db:"-"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

type ComandaItem struct {
	ID               uuid.UUID `json:"id" db:"id"`
	ComandaID        uuid.UUID `json:"comanda_id" db:"comanda_id"`
	ProductID        uuid.UUID `json:"product_id" db:"product_id"`
	ProductName      string    `json:"product_name" db:"product_name"`
	Quantity         int       `json:"quantity" db:"quantity"`
	UnitPriceInCents int64     `json:"unit_price_in_cents" db:"unit_price_in_cents"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

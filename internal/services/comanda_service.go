package services

import (
	"context"
	"errors"
	"time"

	"comandapos/internal/models"
	"comandapos/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var (
	ErrComandaNotFound  = errors.New("comanda not found")
	ErrComandaNotOpen   = errors.New("comanda is not open")
	ErrInvalidStatus    = errors.New("invalid comanda status")
	ErrBadTransition    = errors.New("invalid comanda status transition")
	ErrEmptyItems       = errors.New("at least one item is required")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrInvalidTableSeat = errors.New("table number must be positive")
)

type ItemInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// DailyReport is the revenue summary for one calendar day.
type DailyReport struct {
	Date           string `json:"date"`
	RevenueInCents int64  `json:"revenue_in_cents"`
	ComandasPaid   int    `json:"comandas_paid"`
}

type ComandaService interface {
	Open(ctx context.Context, tenantID uuid.UUID, tableNumber int, items []ItemInput) (*models.Comanda, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Comanda, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Comanda, error)
	AddItems(ctx context.Context, tenantID, id uuid.UUID, items []ItemInput) (*models.Comanda, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (*models.Comanda, error)
	DailyReport(ctx context.Context, tenantID uuid.UUID, day time.Time) (*DailyReport, error)
}

type comandaService struct {
	comandaRepo repositories.ComandaRepository
	productRepo repositories.ProductRepository
	logger      *zap.Logger
}

func NewComandaService(comandaRepo repositories.ComandaRepository, productRepo repositories.ProductRepository, logger *zap.Logger) ComandaService {
	return &comandaService{
		comandaRepo: comandaRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// resolveItems snapshots product prices into comanda items so later price
// edits never change an open tab.
func (s *comandaService) resolveItems(ctx context.Context, tenantID uuid.UUID, inputs []ItemInput) ([]*models.ComandaItem, int64, error) {
	if len(inputs) == 0 {
		return nil, 0, ErrEmptyItems
	}

	items := make([]*models.ComandaItem, 0, len(inputs))
	var total int64
	for _, input := range inputs {
		if input.Quantity <= 0 {
			return nil, 0, ErrInvalidQuantity
		}
		product, err := s.productRepo.GetByID(ctx, tenantID, input.ProductID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, 0, ErrProductNotFound
			}
			return nil, 0, err
		}
		items = append(items, &models.ComandaItem{
			ID:               uuid.New(),
			ProductID:        product.ID,
			ProductName:      product.Name,
			Quantity:         input.Quantity,
			UnitPriceInCents: product.PriceInCents,
		})
		total += product.PriceInCents * int64(input.Quantity)
	}
	return items, total, nil
}

func (s *comandaService) Open(ctx context.Context, tenantID uuid.UUID, tableNumber int, items []ItemInput) (*models.Comanda, error) {
	if tableNumber <= 0 {
		return nil, ErrInvalidTableSeat
	}

	resolved, total, err := s.resolveItems(ctx, tenantID, items)
	if err != nil {
		return nil, err
	}

	comanda := &models.Comanda{
		ID:           uuid.New(),
		TenantID:     tenantID,
		TableNumber:  tableNumber,
		Status:       models.ComandaOpen,
		TotalInCents: total,
		Items:        resolved,
	}
	for _, item := range resolved {
		item.ComandaID = comanda.ID
	}
	if err := s.comandaRepo.Create(ctx, comanda); err != nil {
		return nil, err
	}

	s.logger.Info("comanda opened",
		zap.String("tenant_id", tenantID.String()),
		zap.String("comanda_id", comanda.ID.String()),
		zap.Int("table", tableNumber),
	)
	return comanda, nil
}

func (s *comandaService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Comanda, error) {
	comanda, err := s.comandaRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrComandaNotFound
		}
		return nil, err
	}
	return comanda, nil
}

func (s *comandaService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Comanda, error) {
	return s.comandaRepo.List(ctx, tenantID, limit, offset)
}

func (s *comandaService) AddItems(ctx context.Context, tenantID, id uuid.UUID, items []ItemInput) (*models.Comanda, error) {
	comanda, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if comanda.Status != models.ComandaOpen {
		return nil, ErrComandaNotOpen
	}

	resolved, total, err := s.resolveItems(ctx, tenantID, items)
	if err != nil {
		return nil, err
	}
	for _, item := range resolved {
		item.ComandaID = comanda.ID
		if err := s.comandaRepo.AddItem(ctx, item); err != nil {
			return nil, err
		}
	}
	if err := s.comandaRepo.IncrementTotal(ctx, tenantID, id, total); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, tenantID, id)
}

// allowedTransitions maps each comanda state to the states it may move to.
var allowedTransitions = map[string][]string{
	models.ComandaOpen:   {models.ComandaClosed, models.ComandaCanceled},
	models.ComandaClosed: {models.ComandaPaid, models.ComandaOpen, models.ComandaCanceled},
}

func (s *comandaService) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (*models.Comanda, error) {
	if !models.ValidComandaStatus(status) {
		return nil, ErrInvalidStatus
	}

	comanda, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range allowedTransitions[comanda.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrBadTransition
	}

	if err := s.comandaRepo.UpdateStatus(ctx, tenantID, id, status); err != nil {
		return nil, err
	}
	comanda.Status = status

	s.logger.Info("comanda status changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("comanda_id", id.String()),
		zap.String("status", status),
	)
	return comanda, nil
}

func (s *comandaService) DailyReport(ctx context.Context, tenantID uuid.UUID, day time.Time) (*DailyReport, error) {
	revenue, count, err := s.comandaRepo.DailyRevenue(ctx, tenantID, day)
	if err != nil {
		return nil, err
	}
	return &DailyReport{
		Date:           day.Format("2006-01-02"),
		RevenueInCents: revenue,
		ComandasPaid:   count,
	}, nil
}

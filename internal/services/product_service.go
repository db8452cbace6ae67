package services

import (
	"context"
	"errors"

	"comandapos/internal/models"
	"comandapos/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidPrice    = errors.New("price must be positive")
)

type ProductInput struct {
	Name         string `json:"name"`
	PriceInCents int64  `json:"price_in_cents"`
}

type ProductService interface {
	Create(ctx context.Context, tenantID uuid.UUID, input ProductInput) (*models.Product, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.Product, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, input ProductInput) (*models.Product, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type productService struct {
	productRepo repositories.ProductRepository
}

func NewProductService(productRepo repositories.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) Create(ctx context.Context, tenantID uuid.UUID, input ProductInput) (*models.Product, error) {
	if input.PriceInCents <= 0 {
		return nil, ErrInvalidPrice
	}
	product := &models.Product{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Name:         input.Name,
		PriceInCents: input.PriceInCents,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Product, error) {
	return s.productRepo.List(ctx, tenantID)
}

func (s *productService) Update(ctx context.Context, tenantID, id uuid.UUID, input ProductInput) (*models.Product, error) {
	if input.PriceInCents <= 0 {
		return nil, ErrInvalidPrice
	}
	product, err := s.productRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	product.Name = input.Name
	product.PriceInCents = input.PriceInCents
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.productRepo.GetByID(ctx, tenantID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		return err
	}
	return s.productRepo.Delete(ctx, tenantID, id)
}

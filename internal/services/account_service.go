package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"comandapos/internal/models"
	"comandapos/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
}

// AccountService handles tenant signup and tenant-level settings.
type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*models.Tenant, *models.User, error)
	GetTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error)
	RenameTenant(ctx context.Context, tenantID uuid.UUID, name string) (*models.Tenant, error)
}

type accountService struct {
	tenantRepo repositories.TenantRepository
	userRepo   repositories.UserRepository
	trialDays  int
	logger     *zap.Logger
}

func NewAccountService(tenantRepo repositories.TenantRepository, userRepo repositories.UserRepository, trialDays int, logger *zap.Logger) AccountService {
	return &accountService{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		trialDays:  trialDays,
		logger:     logger,
	}
}

// Register creates a tenant starting its free trial and the admin account
// that owns it.
func (s *accountService) Register(ctx context.Context, input RegisterInput) (*models.Tenant, *models.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrEmailTaken
	}

	trialEndsAt := time.Now().Add(time.Duration(s.trialDays) * 24 * time.Hour)
	tenant := &models.Tenant{
		ID:                 uuid.New(),
		Name:               input.CompanyName,
		OwnerEmail:         input.Email,
		SubscriptionStatus: models.StatusTrial,
		IsActive:           true,
		TrialEndsAt:        &trialEndsAt,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		TenantID:     tenant.ID,
		Email:        input.Email,
		PasswordHash: string(hash),
		Name:         input.Name,
		Role:         models.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	s.logger.Info("tenant registered",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("company", tenant.Name),
		zap.Time("trial_ends_at", trialEndsAt),
	)
	return tenant, user, nil
}

func (s *accountService) GetTenant(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return tenant, nil
}

func (s *accountService) RenameTenant(ctx context.Context, tenantID uuid.UUID, name string) (*models.Tenant, error) {
	if err := s.tenantRepo.UpdateName(ctx, tenantID, name); err != nil {
		return nil, err
	}
	return s.GetTenant(ctx, tenantID)
}

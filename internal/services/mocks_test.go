package services

import (
	"context"
	"time"

	"comandapos/internal/models"
	"comandapos/internal/notify"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v82"
)

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.Tenant, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockTenantRepository) SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	args := m.Called(ctx, id, customerID)
	return args.Error(0)
}

func (m *MockTenantRepository) SetStripeSubscriptionID(ctx context.Context, id uuid.UUID, subscriptionID string) error {
	args := m.Called(ctx, id, subscriptionID)
	return args.Error(0)
}

func (m *MockTenantRepository) AttachSubscription(ctx context.Context, id uuid.UUID, subscriptionID string, status models.SubscriptionStatus, isActive bool, periodEnd *time.Time) error {
	args := m.Called(ctx, id, subscriptionID, status, isActive, periodEnd)
	return args.Error(0)
}

func (m *MockTenantRepository) UpdateSubscriptionState(ctx context.Context, id uuid.UUID, status models.SubscriptionStatus, isActive bool, periodEnd *time.Time) error {
	args := m.Called(ctx, id, status, isActive, periodEnd)
	return args.Error(0)
}

func (m *MockTenantRepository) ExpireTrial(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTenantRepository) ListExpiredTrialIDs(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDAnyTenant(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockUserRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) CountNonAdmins(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, subscription *models.Subscription) error {
	args := m.Called(ctx, subscription)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) GetLatestByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) UpdateByStripeID(ctx context.Context, subscriptionID string, status models.SubscriptionStatus, periodEnd *time.Time, priceInCents int64, userCount int) error {
	args := m.Called(ctx, subscriptionID, status, periodEnd, priceInCents, userCount)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) UpdateStatusByStripeID(ctx context.Context, subscriptionID string, status models.SubscriptionStatus) error {
	args := m.Called(ctx, subscriptionID, status)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) UpdatePricingByStripeID(ctx context.Context, subscriptionID string, priceInCents int64, userCount int) error {
	args := m.Called(ctx, subscriptionID, priceInCents, userCount)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Payment, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Payment), args.Error(1)
}

type MockStripeService struct {
	mock.Mock
}

func (m *MockStripeService) CreateCustomer(tenantID, tenantName, ownerEmail string) (string, error) {
	args := m.Called(tenantID, tenantName, ownerEmail)
	return args.String(0), args.Error(1)
}

func (m *MockStripeService) CreateCheckoutSession(customerID string, priceInCents int64, tenantID, successURL, cancelURL string, trialDays int64) (*CheckoutSession, error) {
	args := m.Called(customerID, priceInCents, tenantID, successURL, cancelURL, trialDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckoutSession), args.Error(1)
}

func (m *MockStripeService) UpdateSubscriptionPrice(subscriptionID string, newPriceInCents int64) (string, error) {
	args := m.Called(subscriptionID, newPriceInCents)
	return args.String(0), args.Error(1)
}

func (m *MockStripeService) ConstructEvent(payload []byte, sigHeader string) (*stripe.Event, error) {
	args := m.Called(payload, sigHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Event), args.Error(1)
}

type MockBroker struct {
	mock.Mock
}

func (m *MockBroker) PublishSubscriptionEvent(ctx context.Context, event notify.SubscriptionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockBroker) SubscribeTenant(ctx context.Context, tenantID uuid.UUID) (<-chan notify.SubscriptionEvent, func(), error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(<-chan notify.SubscriptionEvent), args.Get(1).(func()), args.Error(2)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Product, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockComandaRepository struct {
	mock.Mock
}

func (m *MockComandaRepository) Create(ctx context.Context, comanda *models.Comanda) error {
	args := m.Called(ctx, comanda)
	return args.Error(0)
}

func (m *MockComandaRepository) AddItem(ctx context.Context, item *models.ComandaItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockComandaRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Comanda, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comanda), args.Error(1)
}

func (m *MockComandaRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Comanda, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Comanda), args.Error(1)
}

func (m *MockComandaRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

func (m *MockComandaRepository) IncrementTotal(ctx context.Context, tenantID, id uuid.UUID, deltaInCents int64) error {
	args := m.Called(ctx, tenantID, id, deltaInCents)
	return args.Error(0)
}

func (m *MockComandaRepository) DailyRevenue(ctx context.Context, tenantID uuid.UUID, day time.Time) (int64, int, error) {
	args := m.Called(ctx, tenantID, day)
	return args.Get(0).(int64), args.Int(1), args.Error(2)
}

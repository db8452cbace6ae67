package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"comandapos/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type SubscriptionServiceTestSuite struct {
	suite.Suite
	mockTenantRepo       *MockTenantRepository
	mockUserRepo         *MockUserRepository
	mockSubscriptionRepo *MockSubscriptionRepository
	mockStripe           *MockStripeService
	service              SubscriptionService
	tenantID             uuid.UUID
}

func (suite *SubscriptionServiceTestSuite) SetupTest() {
	suite.mockTenantRepo = &MockTenantRepository{}
	suite.mockUserRepo = &MockUserRepository{}
	suite.mockSubscriptionRepo = &MockSubscriptionRepository{}
	suite.mockStripe = &MockStripeService{}
	pricing := Pricing{BasePriceCents: 10000, PricePerUserCents: 1000}
	suite.service = NewSubscriptionService(
		suite.mockTenantRepo,
		suite.mockUserRepo,
		suite.mockSubscriptionRepo,
		suite.mockStripe,
		pricing,
		3,
		zap.NewNop(),
	)
	suite.tenantID = uuid.New()
}

func (suite *SubscriptionServiceTestSuite) TearDownTest() {
	suite.mockTenantRepo.AssertExpectations(suite.T())
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockSubscriptionRepo.AssertExpectations(suite.T())
	suite.mockStripe.AssertExpectations(suite.T())
}

func TestSubscriptionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceTestSuite))
}

func (suite *SubscriptionServiceTestSuite) tenant(status models.SubscriptionStatus) *models.Tenant {
	customerID := "cus_123"
	return &models.Tenant{
		ID:                 suite.tenantID,
		Name:               "Boteco Central",
		OwnerEmail:         "dono@boteco.com",
		StripeCustomerID:   &customerID,
		SubscriptionStatus: status,
		IsActive:           status == models.StatusTrial || status == models.StatusActive,
	}
}

func (suite *SubscriptionServiceTestSuite) TestCheckoutRequiresAdmin() {
	_, err := suite.service.CreateCheckout(context.Background(), suite.tenantID, models.RoleWaiter, "")
	suite.ErrorIs(err, ErrForbidden)
}

func (suite *SubscriptionServiceTestSuite) TestCheckoutUnknownTenant() {
	suite.mockTenantRepo.On("GetByID", mock.Anything, suite.tenantID).Return(nil, pgx.ErrNoRows)

	_, err := suite.service.CreateCheckout(context.Background(), suite.tenantID, models.RoleAdmin, "")
	suite.ErrorIs(err, ErrTenantNotFound)
}

func (suite *SubscriptionServiceTestSuite) TestCheckoutProvisionsCustomerOnce() {
	tenant := suite.tenant(models.StatusTrial)
	tenant.StripeCustomerID = nil

	suite.mockTenantRepo.On("GetByID", mock.Anything, suite.tenantID).Return(tenant, nil)
	suite.mockStripe.On("CreateCustomer", suite.tenantID.String(), tenant.Name, tenant.OwnerEmail).
		Return("cus_new", nil).Once()
	suite.mockTenantRepo.On("SetStripeCustomerID", mock.Anything, suite.tenantID, "cus_new").
		Return(nil).Once()
	suite.mockUserRepo.On("CountByTenant", mock.Anything, suite.tenantID).Return(1, nil)
	suite.mockStripe.On("CreateCheckoutSession", "cus_new", int64(10000), suite.tenantID.String(),
		"http://localhost:3000/?payment=success", "http://localhost:3000/?payment=cancelled",
		int64(0)).Return(&CheckoutSession{SessionID: "cs_1", URL: "https://checkout"}, nil)

	session, err := suite.service.CreateCheckout(context.Background(), suite.tenantID, models.RoleAdmin, "")
	suite.NoError(err)
	suite.Equal("cs_1", session.SessionID)
}

func (suite *SubscriptionServiceTestSuite) TestCheckoutTrialInclusion() {
	cases := []struct {
		status    models.SubscriptionStatus
		trialDays int64
	}{
		{models.StatusTrial, 0},
		{models.StatusPastDue, 0},
		{models.StatusCanceled, 0},
		{models.StatusUnpaid, 0},
		{models.StatusActive, 3},
	}

	for _, tc := range cases {
		suite.SetupTest()
		tenant := suite.tenant(tc.status)

		suite.mockTenantRepo.On("GetByID", mock.Anything, suite.tenantID).Return(tenant, nil)
		suite.mockUserRepo.On("CountByTenant", mock.Anything, suite.tenantID).Return(2, nil)
		suite.mockStripe.On("CreateCheckoutSession", "cus_123", int64(11000), suite.tenantID.String(),
			"https://pos.example/?payment=success", "https://pos.example/?payment=cancelled",
			tc.trialDays).Return(&CheckoutSession{SessionID: "cs_2", URL: "https://checkout"}, nil)

		_, err := suite.service.CreateCheckout(context.Background(), suite.tenantID,
			models.RoleAdmin, "https://pos.example")
		suite.NoError(err, "status %s", tc.status)
		suite.mockStripe.AssertExpectations(suite.T())
	}
}

func (suite *SubscriptionServiceTestSuite) TestUpdatePriceWithoutSubscription() {
	tenant := suite.tenant(models.StatusTrial)

	suite.mockTenantRepo.On("GetByID", mock.Anything, suite.tenantID).Return(tenant, nil)

	_, err := suite.service.UpdatePrice(context.Background(), suite.tenantID)
	suite.ErrorIs(err, ErrNoSubscription)
}

func (suite *SubscriptionServiceTestSuite) TestUpdatePriceRepricesByHeadcount() {
	tenant := suite.tenant(models.StatusActive)
	subID := "sub_123"
	tenant.StripeSubscriptionID = &subID

	suite.mockTenantRepo.On("GetByID", mock.Anything, suite.tenantID).Return(tenant, nil)
	suite.mockUserRepo.On("CountByTenant", mock.Anything, suite.tenantID).Return(4, nil)
	suite.mockStripe.On("UpdateSubscriptionPrice", "sub_123", int64(13000)).Return("active", nil)
	suite.mockSubscriptionRepo.On("UpdatePricingByStripeID", mock.Anything, "sub_123",
		int64(13000), 4).Return(nil)

	update, err := suite.service.UpdatePrice(context.Background(), suite.tenantID)
	suite.NoError(err)
	suite.Equal(int64(13000), update.NewPriceInCents)
	suite.Equal(4, update.UserCount)
	suite.Equal("active", update.SubscriptionStatus)
}

func (suite *SubscriptionServiceTestSuite) TestUpdatePriceFailsWhenRecordingFails() {
	tenant := suite.tenant(models.StatusActive)
	subID := "sub_123"
	tenant.StripeSubscriptionID = &subID

	suite.mockTenantRepo.On("GetByID", mock.Anything, suite.tenantID).Return(tenant, nil)
	suite.mockUserRepo.On("CountByTenant", mock.Anything, suite.tenantID).Return(4, nil)
	suite.mockStripe.On("UpdateSubscriptionPrice", "sub_123", int64(13000)).Return("active", nil)
	suite.mockSubscriptionRepo.On("UpdatePricingByStripeID", mock.Anything, "sub_123",
		int64(13000), 4).Return(errors.New("connection reset"))

	_, err := suite.service.UpdatePrice(context.Background(), suite.tenantID)
	suite.Error(err)
}

func (suite *SubscriptionServiceTestSuite) TestGetSummaryPricesNonAdminsPlusOne() {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	tenant := suite.tenant(models.StatusActive)
	periodEnd := now.Add(2 * 24 * time.Hour)
	tenant.CurrentPeriodEnd = &periodEnd

	suite.mockTenantRepo.On("GetByID", mock.Anything, suite.tenantID).Return(tenant, nil)
	suite.mockUserRepo.On("CountByTenant", mock.Anything, suite.tenantID).Return(5, nil)
	suite.mockUserRepo.On("CountNonAdmins", mock.Anything, suite.tenantID).Return(3, nil)
	suite.mockSubscriptionRepo.On("GetLatestByTenant", mock.Anything, suite.tenantID).
		Return(nil, pgx.ErrNoRows)

	summary, err := suite.service.GetSummary(context.Background(), suite.tenantID, now)
	suite.NoError(err)
	suite.Equal(5, summary.TotalUsers)
	suite.Equal(3, summary.NonAdminUsers)
	suite.Equal(int64(13000), summary.CurrentPriceInCents)
	suite.True(summary.PaymentDueSoon)
	suite.Nil(summary.Subscription)
	suite.Require().NotNil(summary.DaysUntilDue)
	suite.Equal(2, *summary.DaysUntilDue)
}

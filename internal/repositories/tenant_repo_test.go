package repositories

import (
	"context"
	"testing"
	"time"

	"comandapos/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type TenantRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     TenantRepository
	tenantID uuid.UUID
	ctx      context.Context
}

func (suite *TenantRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewTenantRepo(mock)
	suite.tenantID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *TenantRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestTenantRepoTestSuite(t *testing.T) {
	suite.Run(t, new(TenantRepoTestSuite))
}

func (suite *TenantRepoTestSuite) TestCreate() {
	trialEnds := time.Now().Add(72 * time.Hour)
	tenant := &models.Tenant{
		ID:                 suite.tenantID,
		Name:               "Bar do Zé",
		OwnerEmail:         "ze@bar.com",
		SubscriptionStatus: models.StatusTrial,
		IsActive:           true,
		TrialEndsAt:        &trialEnds,
	}

	suite.mock.ExpectExec(`INSERT INTO tenants`).
		WithArgs(tenant.ID, tenant.Name, tenant.OwnerEmail, tenant.SubscriptionStatus, tenant.IsActive, tenant.TrialEndsAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.ctx, tenant)
	suite.NoError(err)
}

func (suite *TenantRepoTestSuite) TestGetByID() {
	now := time.Now()
	rows := pgxmock.NewRows([]string{
		"id", "name", "owner_email", "stripe_customer_id", "stripe_subscription_id",
		"subscription_status", "is_active", "trial_ends_at", "current_period_end",
		"created_at", "updated_at",
	}).AddRow(
		suite.tenantID, "Bar do Zé", "ze@bar.com", (*string)(nil), (*string)(nil),
		models.StatusTrial, true, (*time.Time)(nil), (*time.Time)(nil), now, now,
	)

	suite.mock.ExpectQuery(`SELECT (.+) FROM tenants WHERE id = \$1`).
		WithArgs(suite.tenantID).
		WillReturnRows(rows)

	tenant, err := suite.repo.GetByID(suite.ctx, suite.tenantID)
	suite.NoError(err)
	suite.Equal("Bar do Zé", tenant.Name)
	suite.Equal(models.StatusTrial, tenant.SubscriptionStatus)
	suite.True(tenant.IsActive)
}

func (suite *TenantRepoTestSuite) TestAttachSubscription() {
	periodEnd := time.Now().Add(30 * 24 * time.Hour)

	suite.mock.ExpectExec(`UPDATE tenants`).
		WithArgs("sub_123", models.StatusTrial, true, &periodEnd, suite.tenantID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.AttachSubscription(suite.ctx, suite.tenantID, "sub_123", models.StatusTrial, true, &periodEnd)
	suite.NoError(err)
}

func (suite *TenantRepoTestSuite) TestExpireTrialUpdatesUnsubscribedTenant() {
	suite.mock.ExpectExec(`UPDATE tenants`).
		WithArgs(models.StatusUnpaid, suite.tenantID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	expired, err := suite.repo.ExpireTrial(suite.ctx, suite.tenantID)
	suite.NoError(err)
	suite.True(expired)
}

func (suite *TenantRepoTestSuite) TestExpireTrialSkipsSubscribedTenant() {
	// The guard on stripe_subscription_id makes the update match nothing.
	suite.mock.ExpectExec(`UPDATE tenants`).
		WithArgs(models.StatusUnpaid, suite.tenantID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	expired, err := suite.repo.ExpireTrial(suite.ctx, suite.tenantID)
	suite.NoError(err)
	suite.False(expired)
}

func (suite *TenantRepoTestSuite) TestUpdateSubscriptionStateKeepsPeriodEndWhenNil() {
	suite.mock.ExpectExec(`UPDATE tenants`).
		WithArgs(models.StatusCanceled, false, (*time.Time)(nil), suite.tenantID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdateSubscriptionState(suite.ctx, suite.tenantID, models.StatusCanceled, false, nil)
	suite.NoError(err)
}

func (suite *TenantRepoTestSuite) TestListExpiredTrialIDs() {
	now := time.Now()
	id1 := uuid.New()
	id2 := uuid.New()
	rows := pgxmock.NewRows([]string{"id"}).AddRow(id1).AddRow(id2)

	suite.mock.ExpectQuery(`SELECT id FROM tenants`).
		WithArgs(now, 500).
		WillReturnRows(rows)

	ids, err := suite.repo.ListExpiredTrialIDs(suite.ctx, now, 500)
	suite.NoError(err)
	suite.Equal([]uuid.UUID{id1, id2}, ids)
}

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

type PaymentRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     PaymentRepository
	tenantID uuid.UUID
	ctx      context.Context
}

func (suite *PaymentRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewPaymentRepo(mock)
	suite.tenantID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *PaymentRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestPaymentRepoTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentRepoTestSuite))
}

func (suite *PaymentRepoTestSuite) TestCreateSucceededPayment() {
	paidAt := time.Now()
	intentID := "pi_123"
	payment := &models.Payment{
		ID:                    uuid.New(),
		TenantID:              suite.tenantID,
		StripeInvoiceID:       "in_123",
		StripePaymentIntentID: &intentID,
		AmountInCents:         12000,
		Status:                models.PaymentSucceeded,
		PaidAt:                &paidAt,
	}

	suite.mock.ExpectExec(`INSERT INTO payments`).
		WithArgs(payment.ID, payment.TenantID, payment.StripeInvoiceID, payment.StripePaymentIntentID,
			payment.AmountInCents, payment.Status, payment.PaidAt, payment.FailedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.ctx, payment)
	suite.NoError(err)
}

func (suite *PaymentRepoTestSuite) TestListByTenant() {
	now := time.Now()
	paymentID := uuid.New()
	rows := pgxmock.NewRows([]string{
		"id", "tenant_id", "stripe_invoice_id", "stripe_payment_intent_id",
		"amount_in_cents", "status", "paid_at", "failed_at", "created_at",
	}).AddRow(
		paymentID, suite.tenantID, "in_123", (*string)(nil),
		int64(12000), models.PaymentSucceeded, &now, (*time.Time)(nil), now,
	)

	suite.mock.ExpectQuery(`SELECT (.+) FROM payments`).
		WithArgs(suite.tenantID, 50, 0).
		WillReturnRows(rows)

	payments, err := suite.repo.ListByTenant(suite.ctx, suite.tenantID, 50, 0)
	suite.NoError(err)
	suite.Len(payments, 1)
	suite.Equal("in_123", payments[0].StripeInvoiceID)
	suite.Equal(int64(12000), payments[0].AmountInCents)
}

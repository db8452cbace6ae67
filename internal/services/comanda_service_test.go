package services

import (
	"context"
	"testing"

	"comandapos/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type ComandaServiceTestSuite struct {
	suite.Suite
	mockComandaRepo *MockComandaRepository
	mockProductRepo *MockProductRepository
	service         ComandaService
	tenantID        uuid.UUID
}

func (suite *ComandaServiceTestSuite) SetupTest() {
	suite.mockComandaRepo = &MockComandaRepository{}
	suite.mockProductRepo = &MockProductRepository{}
	suite.service = NewComandaService(suite.mockComandaRepo, suite.mockProductRepo, zap.NewNop())
	suite.tenantID = uuid.New()
}

func (suite *ComandaServiceTestSuite) TearDownTest() {
	suite.mockComandaRepo.AssertExpectations(suite.T())
	suite.mockProductRepo.AssertExpectations(suite.T())
}

func TestComandaServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ComandaServiceTestSuite))
}

func (suite *ComandaServiceTestSuite) TestOpenSnapshotsProductPrices() {
	productID := uuid.New()
	product := &models.Product{
		ID:           productID,
		TenantID:     suite.tenantID,
		Name:         "Chopp 300ml",
		PriceInCents: 900,
	}

	suite.mockProductRepo.On("GetByID", mock.Anything, suite.tenantID, productID).Return(product, nil)
	suite.mockComandaRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Comanda) bool {
		return c.Status == models.ComandaOpen &&
			c.TotalInCents == 2700 &&
			len(c.Items) == 1 &&
			c.Items[0].UnitPriceInCents == 900 &&
			c.Items[0].ProductName == "Chopp 300ml"
	})).Return(nil)

	comanda, err := suite.service.Open(context.Background(), suite.tenantID, 7,
		[]ItemInput{{ProductID: productID, Quantity: 3}})
	suite.NoError(err)
	suite.Equal(int64(2700), comanda.TotalInCents)
	suite.Equal(7, comanda.TableNumber)
}

func (suite *ComandaServiceTestSuite) TestOpenRejectsEmptyItems() {
	_, err := suite.service.Open(context.Background(), suite.tenantID, 2, nil)
	suite.ErrorIs(err, ErrEmptyItems)
}

func (suite *ComandaServiceTestSuite) TestOpenRejectsBadTable() {
	_, err := suite.service.Open(context.Background(), suite.tenantID, 0,
		[]ItemInput{{ProductID: uuid.New(), Quantity: 1}})
	suite.ErrorIs(err, ErrInvalidTableSeat)
}

func (suite *ComandaServiceTestSuite) TestAddItemsOnlyWhileOpen() {
	comandaID := uuid.New()
	comanda := &models.Comanda{
		ID:       comandaID,
		TenantID: suite.tenantID,
		Status:   models.ComandaPaid,
	}

	suite.mockComandaRepo.On("GetByID", mock.Anything, suite.tenantID, comandaID).Return(comanda, nil)

	_, err := suite.service.AddItems(context.Background(), suite.tenantID, comandaID,
		[]ItemInput{{ProductID: uuid.New(), Quantity: 1}})
	suite.ErrorIs(err, ErrComandaNotOpen)
}

func (suite *ComandaServiceTestSuite) TestStatusTransitions() {
	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{models.ComandaOpen, models.ComandaClosed, true},
		{models.ComandaOpen, models.ComandaCanceled, true},
		{models.ComandaOpen, models.ComandaPaid, false},
		{models.ComandaClosed, models.ComandaPaid, true},
		{models.ComandaClosed, models.ComandaOpen, true},
		{models.ComandaPaid, models.ComandaOpen, false},
		{models.ComandaCanceled, models.ComandaPaid, false},
	}

	for _, tc := range cases {
		suite.SetupTest()
		comandaID := uuid.New()
		comanda := &models.Comanda{ID: comandaID, TenantID: suite.tenantID, Status: tc.from}

		suite.mockComandaRepo.On("GetByID", mock.Anything, suite.tenantID, comandaID).Return(comanda, nil)
		if tc.allowed {
			suite.mockComandaRepo.On("UpdateStatus", mock.Anything, suite.tenantID, comandaID, tc.to).Return(nil)
		}

		updated, err := suite.service.UpdateStatus(context.Background(), suite.tenantID, comandaID, tc.to)
		if tc.allowed {
			suite.NoError(err, "%s -> %s", tc.from, tc.to)
			suite.Equal(tc.to, updated.Status)
		} else {
			suite.ErrorIs(err, ErrBadTransition, "%s -> %s", tc.from, tc.to)
		}
		suite.mockComandaRepo.AssertExpectations(suite.T())
	}
}

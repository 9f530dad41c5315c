package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/avolut/retail-stock-service/internal/model"
	"github.com/avolut/retail-stock-service/pkg/clock"
	"github.com/avolut/retail-stock-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var refDate = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type ProductReaderMock struct{ mock.Mock }

func (m *ProductReaderMock) FindByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func (m *ProductReaderMock) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductReaderMock) FindServiceByID(ctx context.Context, id string) (*model.Service, error) {
	args := m.Called(ctx, id)
	svc, _ := args.Get(0).(*model.Service)
	return svc, args.Error(1)
}

type StockReaderMock struct{ mock.Mock }

func (m *StockReaderMock) GetOnHand(ctx context.Context, productID, locationID string) (int64, error) {
	args := m.Called(ctx, productID, locationID)
	return args.Get(0).(int64), args.Error(1)
}

type ReservationListerMock struct{ mock.Mock }

func (m *ReservationListerMock) FindByProduct(ctx context.Context, productID string) ([]model.Reservation, error) {
	args := m.Called(ctx, productID)
	items, _ := args.Get(0).([]model.Reservation)
	return items, args.Error(1)
}

func newTestUC(products *ProductReaderMock, stock *StockReaderMock, reservations *ReservationListerMock) *availabilityUseCase {
	return &availabilityUseCase{
		products:     products,
		stock:        stock,
		reservations: reservations,
		clock:        clock.NewFixed(refDate),
		logger:       logger.NewNop(),
	}
}

func trackedProduct(id string) model.Product {
	return model.Product{BaseModel: model.BaseModel{ID: id}, StockTracked: true}
}

func TestCheckProduct_Tracked(t *testing.T) {
	products := new(ProductReaderMock)
	stock := new(StockReaderMock)
	reservations := new(ReservationListerMock)
	uc := newTestUC(products, stock, reservations)

	p := trackedProduct("p1")
	products.On("FindByID", mock.Anything, "p1").Return(&p, nil)
	stock.On("GetOnHand", mock.Anything, "p1", "store-1").Return(int64(10), nil)
	reservations.On("FindByProduct", mock.Anything, "p1").Return([]model.Reservation{
		{ID: "r1", ProductID: "p1", Quantity: 4},
	}, nil)

	got, err := uc.CheckProduct(context.Background(), "p1", "store-1", 5)
	require.NoError(t, err)

	assert.True(t, got.IsAvailable)
	assert.Equal(t, int64(6), got.AvailableStock.Quantity)
}

func TestCheckProduct_NonTrackedSkipsStockReads(t *testing.T) {
	products := new(ProductReaderMock)
	stock := new(StockReaderMock)
	reservations := new(ReservationListerMock)
	uc := newTestUC(products, stock, reservations)

	p := model.Product{BaseModel: model.BaseModel{ID: "p1"}, StockTracked: false}
	products.On("FindByID", mock.Anything, "p1").Return(&p, nil)

	got, err := uc.CheckProduct(context.Background(), "p1", "store-1", 500)
	require.NoError(t, err)

	assert.True(t, got.IsAvailable)
	assert.True(t, got.AvailableStock.Unlimited)
	stock.AssertNotCalled(t, "GetOnHand", mock.Anything, mock.Anything, mock.Anything)
	reservations.AssertNotCalled(t, "FindByProduct", mock.Anything, mock.Anything)
}

func TestCheckProduct_Unknown(t *testing.T) {
	products := new(ProductReaderMock)
	uc := newTestUC(products, new(StockReaderMock), new(ReservationListerMock))

	products.On("FindByID", mock.Anything, "missing").Return(nil, nil)

	_, err := uc.CheckProduct(context.Background(), "missing", "store-1", 1)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCheckService_AggregatesItems(t *testing.T) {
	products := new(ProductReaderMock)
	stock := new(StockReaderMock)
	reservations := new(ReservationListerMock)
	uc := newTestUC(products, stock, reservations)

	svc := &model.Service{
		BaseModel:         model.BaseModel{ID: "svc-1"},
		ConsumesInventory: true,
		Items: []model.ServiceItem{
			{ServiceID: "svc-1", ProductID: "A", Quantity: 2},
			{ServiceID: "svc-1", ProductID: "B", Quantity: 1},
		},
	}
	products.On("FindServiceByID", mock.Anything, "svc-1").Return(svc, nil)
	products.On("FindByIDs", mock.Anything, []string{"A", "B"}).Return([]model.Product{
		trackedProduct("A"), trackedProduct("B"),
	}, nil)
	stock.On("GetOnHand", mock.Anything, "A", "store-1").Return(int64(10), nil)
	stock.On("GetOnHand", mock.Anything, "B", "store-1").Return(int64(0), nil)
	reservations.On("FindByProduct", mock.Anything, "A").Return([]model.Reservation{}, nil)
	reservations.On("FindByProduct", mock.Anything, "B").Return([]model.Reservation{}, nil)

	got, err := uc.CheckService(context.Background(), "svc-1", "store-1")
	require.NoError(t, err)

	assert.False(t, got.IsAvailable)
	assert.Equal(t, []string{"B"}, got.UnavailableProducts)
}

func TestCheckService_NonConsumingIsTriviallyAvailable(t *testing.T) {
	products := new(ProductReaderMock)
	stock := new(StockReaderMock)
	uc := newTestUC(products, stock, new(ReservationListerMock))

	svc := &model.Service{
		BaseModel:         model.BaseModel{ID: "svc-1"},
		ConsumesInventory: false,
		Items:             []model.ServiceItem{{ProductID: "A", Quantity: 2}},
	}
	products.On("FindServiceByID", mock.Anything, "svc-1").Return(svc, nil)

	got, err := uc.CheckService(context.Background(), "svc-1", "store-1")
	require.NoError(t, err)

	assert.True(t, got.IsAvailable)
	stock.AssertNotCalled(t, "GetOnHand", mock.Anything, mock.Anything, mock.Anything)
}

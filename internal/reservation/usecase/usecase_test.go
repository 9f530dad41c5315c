package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/avolut/retail-stock-service/internal/model"
	"github.com/avolut/retail-stock-service/internal/reservation/dto"
	"github.com/avolut/retail-stock-service/pkg/clock"
	"github.com/avolut/retail-stock-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var refDate = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type ResvRepoMock struct{ mock.Mock }

func (m *ResvRepoMock) Save(ctx context.Context, r *model.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *ResvRepoMock) Update(ctx context.Context, r *model.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *ResvRepoMock) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*model.Reservation)
	return r, args.Error(1)
}

func (m *ResvRepoMock) FindByProduct(ctx context.Context, productID string) ([]model.Reservation, error) {
	args := m.Called(ctx, productID)
	items, _ := args.Get(0).([]model.Reservation)
	return items, args.Error(1)
}

func (m *ResvRepoMock) FindByReservedFor(ctx context.Context, reservedFor string, forType model.ReservedForType) ([]model.Reservation, error) {
	args := m.Called(ctx, reservedFor, forType)
	items, _ := args.Get(0).([]model.Reservation)
	return items, args.Error(1)
}

func (m *ResvRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ResvRepoMock) SumActiveByProduct(ctx context.Context, productID string, referenceDate time.Time) (int64, error) {
	args := m.Called(ctx, productID, referenceDate)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ResvRepoMock) FindExpired(ctx context.Context, referenceDate time.Time, limit int) ([]model.Reservation, error) {
	args := m.Called(ctx, referenceDate, limit)
	items, _ := args.Get(0).([]model.Reservation)
	return items, args.Error(1)
}

type ResvProductRepoMock struct{ mock.Mock }

func (m *ResvProductRepoMock) FindByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func (m *ResvProductRepoMock) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	panic("not used in ReservationUseCase tests")
}

func (m *ResvProductRepoMock) FindServiceByID(ctx context.Context, id string) (*model.Service, error) {
	panic("not used in ReservationUseCase tests")
}

type ResvStockReaderMock struct{ mock.Mock }

func (m *ResvStockReaderMock) GetOnHand(ctx context.Context, productID, locationID string) (int64, error) {
	args := m.Called(ctx, productID, locationID)
	return args.Get(0).(int64), args.Error(1)
}

func newTestUC(repo *ResvRepoMock, products *ResvProductRepoMock, stock *ResvStockReaderMock) *reservationUseCase {
	return &reservationUseCase{
		repo:        repo,
		productRepo: products,
		stock:       stock,
		clock:       clock.NewFixed(refDate),
		logger:      logger.NewNop(),
	}
}

func trackedProduct(id string) *model.Product {
	return &model.Product{BaseModel: model.BaseModel{ID: id}, StockTracked: true}
}

func scheduledAppointment() *model.Appointment {
	return &model.Appointment{
		ID:      "apt-1",
		Status:  model.AppointmentScheduled,
		StartAt: refDate.Add(time.Hour),
		EndAt:   refDate.Add(2 * time.Hour),
	}
}

func TestCreateForAppointment_Persists(t *testing.T) {
	repo := new(ResvRepoMock)
	products := new(ResvProductRepoMock)
	stock := new(ResvStockReaderMock)
	uc := newTestUC(repo, products, stock)

	products.On("FindByID", mock.Anything, "p1").Return(trackedProduct("p1"), nil)
	stock.On("GetOnHand", mock.Anything, "p1", "store-1").Return(int64(10), nil)
	repo.On("FindByProduct", mock.Anything, "p1").Return([]model.Reservation{}, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	result, err := uc.CreateForAppointment(context.Background(), &dto.CreateReservationInput{
		ProductID:   "p1",
		Quantity:    4,
		LocationID:  "store-1",
		Appointment: scheduledAppointment(),
	})
	require.NoError(t, err)

	assert.True(t, result.CanCreate)
	assert.False(t, result.RequiresOverride)
	require.NotNil(t, result.Reservation)
	assert.Equal(t, "apt-1", result.Reservation.ReservedFor)
	assert.Equal(t, model.ReservedForAppointment, result.Reservation.ReservedForType)
	repo.AssertCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateForAppointment_InsufficientIsNotPersisted(t *testing.T) {
	repo := new(ResvRepoMock)
	products := new(ResvProductRepoMock)
	stock := new(ResvStockReaderMock)
	uc := newTestUC(repo, products, stock)

	products.On("FindByID", mock.Anything, "p1").Return(trackedProduct("p1"), nil)
	stock.On("GetOnHand", mock.Anything, "p1", "store-1").Return(int64(3), nil)
	repo.On("FindByProduct", mock.Anything, "p1").Return([]model.Reservation{}, nil)

	result, err := uc.CreateForAppointment(context.Background(), &dto.CreateReservationInput{
		ProductID:   "p1",
		Quantity:    5,
		LocationID:  "store-1",
		Appointment: scheduledAppointment(),
	})
	require.NoError(t, err)

	assert.False(t, result.CanCreate)
	assert.True(t, result.RequiresOverride)
	assert.Nil(t, result.Reservation)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateForAppointment_OverrideProceedsWithWarning(t *testing.T) {
	repo := new(ResvRepoMock)
	products := new(ResvProductRepoMock)
	stock := new(ResvStockReaderMock)
	uc := newTestUC(repo, products, stock)

	products.On("FindByID", mock.Anything, "p1").Return(trackedProduct("p1"), nil)
	stock.On("GetOnHand", mock.Anything, "p1", "store-1").Return(int64(3), nil)
	repo.On("FindByProduct", mock.Anything, "p1").Return([]model.Reservation{}, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	result, err := uc.CreateForAppointment(context.Background(), &dto.CreateReservationInput{
		ProductID:     "p1",
		Quantity:      5,
		LocationID:    "store-1",
		Appointment:   scheduledAppointment(),
		AllowOverride: true,
	})
	require.NoError(t, err)

	assert.True(t, result.CanCreate)
	assert.True(t, result.RequiresOverride)
	assert.NotEmpty(t, result.Warnings)
	require.NotNil(t, result.Reservation)
}

func TestCreateForAppointment_ExistingHoldsReduceAvailability(t *testing.T) {
	repo := new(ResvRepoMock)
	products := new(ResvProductRepoMock)
	stock := new(ResvStockReaderMock)
	uc := newTestUC(repo, products, stock)

	products.On("FindByID", mock.Anything, "p1").Return(trackedProduct("p1"), nil)
	stock.On("GetOnHand", mock.Anything, "p1", "store-1").Return(int64(10), nil)
	repo.On("FindByProduct", mock.Anything, "p1").Return([]model.Reservation{
		{ID: "other", ProductID: "p1", Quantity: 8, ReservedFor: "apt-9", ReservedForType: model.ReservedForAppointment},
	}, nil)

	result, err := uc.CreateForAppointment(context.Background(), &dto.CreateReservationInput{
		ProductID:   "p1",
		Quantity:    4,
		LocationID:  "store-1",
		Appointment: scheduledAppointment(),
	})
	require.NoError(t, err)

	assert.False(t, result.CanCreate, "only 2 of 10 remain unreserved")
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateForAppointment_HardErrors(t *testing.T) {
	repo := new(ResvRepoMock)
	products := new(ResvProductRepoMock)
	stock := new(ResvStockReaderMock)
	uc := newTestUC(repo, products, stock)

	_, err := uc.CreateForAppointment(context.Background(), &dto.CreateReservationInput{
		ProductID: "p1", Quantity: 1, LocationID: "store-1",
	})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	products.On("FindByID", mock.Anything, "missing").Return(nil, nil)
	_, err = uc.CreateForAppointment(context.Background(), &dto.CreateReservationInput{
		ProductID: "missing", Quantity: 1, LocationID: "store-1", Appointment: scheduledAppointment(),
	})
	assert.ErrorIs(t, err, model.ErrNotFound)

	untracked := trackedProduct("p2")
	untracked.StockTracked = false
	products.On("FindByID", mock.Anything, "p2").Return(untracked, nil)
	_, err = uc.CreateForAppointment(context.Background(), &dto.CreateReservationInput{
		ProductID: "p2", Quantity: 1, LocationID: "store-1", Appointment: scheduledAppointment(),
	})
	assert.ErrorIs(t, err, model.ErrNotStockTracked)
}

func TestRelease_MissingIsNoOp(t *testing.T) {
	repo := new(ResvRepoMock)
	uc := newTestUC(repo, new(ResvProductRepoMock), new(ResvStockReaderMock))

	repo.On("FindByID", mock.Anything, "gone").Return(nil, nil)

	result, err := uc.Release(context.Background(), &dto.ReleaseReservationInput{ReservationID: "gone"})
	require.NoError(t, err)
	assert.False(t, result.Released)
	assert.NotEmpty(t, result.Warnings)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRelease_ExpiredWarnsButSucceeds(t *testing.T) {
	repo := new(ResvRepoMock)
	uc := newTestUC(repo, new(ResvProductRepoMock), new(ResvStockReaderMock))

	past := refDate.Add(-time.Hour)
	repo.On("FindByID", mock.Anything, "r1").Return(&model.Reservation{ID: "r1", ProductID: "p1", Quantity: 2, ExpiresAt: &past}, nil)
	repo.On("Delete", mock.Anything, "r1").Return(nil)

	result, err := uc.Release(context.Background(), &dto.ReleaseReservationInput{ReservationID: "r1"})
	require.NoError(t, err)
	assert.True(t, result.Released)
	assert.NotEmpty(t, result.Warnings)
}

func TestReleaseFor_DeletesAllHolds(t *testing.T) {
	repo := new(ResvRepoMock)
	uc := newTestUC(repo, new(ResvProductRepoMock), new(ResvStockReaderMock))

	repo.On("FindByReservedFor", mock.Anything, "order-1", model.ReservedForOrder).Return([]model.Reservation{
		{ID: "r1"}, {ID: "r2"},
	}, nil)
	repo.On("Delete", mock.Anything, "r1").Return(nil)
	repo.On("Delete", mock.Anything, "r2").Return(nil)

	released, err := uc.ReleaseFor(context.Background(), "order-1", model.ReservedForOrder)
	require.NoError(t, err)
	assert.Equal(t, 2, released)
}

func TestSweepExpired(t *testing.T) {
	repo := new(ResvRepoMock)
	uc := newTestUC(repo, new(ResvProductRepoMock), new(ResvStockReaderMock))

	repo.On("FindExpired", mock.Anything, refDate, 100).Return([]model.Reservation{{ID: "r1"}}, nil)
	repo.On("Delete", mock.Anything, "r1").Return(nil)

	released, err := uc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, released)
}

func TestReplace_Validations(t *testing.T) {
	repo := new(ResvRepoMock)
	uc := newTestUC(repo, new(ResvProductRepoMock), new(ResvStockReaderMock))

	assert.ErrorIs(t, uc.Replace(context.Background(), nil), model.ErrInvalidArgument)
	assert.ErrorIs(t, uc.Replace(context.Background(), &model.Reservation{ID: "r1", Quantity: 0}), model.ErrInvalidQuantity)

	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	assert.NoError(t, uc.Replace(context.Background(), &model.Reservation{ID: "r1", ProductID: "p1", Quantity: 3}))
}

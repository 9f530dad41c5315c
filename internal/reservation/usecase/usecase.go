package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avolut/retail-stock-service/internal/availability"
	"github.com/avolut/retail-stock-service/internal/model"
	"github.com/avolut/retail-stock-service/internal/product"
	"github.com/avolut/retail-stock-service/internal/reservation"
	"github.com/avolut/retail-stock-service/internal/reservation/dto"
	"github.com/avolut/retail-stock-service/pkg/cache"
	"github.com/avolut/retail-stock-service/pkg/clock"
	"github.com/avolut/retail-stock-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type reservationUseCase struct {
	repo        reservation.Repository
	productRepo product.Repository
	stock       reservation.StockReader
	cache       *cache.RedisClient
	clock       clock.Clock
	logger      logger.ZapLogger
}

func NewReservationUseCase(
	repo reservation.Repository,
	productRepo product.Repository,
	stock reservation.StockReader,
	cache *cache.RedisClient,
	clk clock.Clock,
	log logger.ZapLogger,
) reservation.UseCase {
	return &reservationUseCase{
		repo:        repo,
		productRepo: productRepo,
		stock:       stock,
		cache:       cache,
		clock:       clk,
		logger:      log,
	}
}

func (uc *reservationUseCase) CreateForAppointment(ctx context.Context, input *dto.CreateReservationInput) (*dto.CreateReservationResult, error) {
	if input.Appointment == nil || input.Appointment.ID == "" {
		return nil, fmt.Errorf("%w: appointment is required", model.ErrInvalidArgument)
	}

	p, err := uc.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: product %s", model.ErrNotFound, input.ProductID)
	}
	if !p.StockTracked {
		return nil, fmt.Errorf("%w: product %s", model.ErrNotStockTracked, input.ProductID)
	}

	// Availability read and insert must be serialized per product, or two
	// concurrent holds can both pass a check neither would pass alone.
	unlock, err := uc.lockProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := uc.clock.Now()

	onHand, err := uc.stock.GetOnHand(ctx, input.ProductID, input.LocationID)
	if err != nil {
		return nil, err
	}
	existing, err := uc.repo.FindByProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	available := availability.CalculateAvailableStock(p, onHand, existing, now)

	check := reservation.ValidateCreateForAppointment(
		p, input.Quantity, input.Appointment, available, input.ExpiresAt, input.AllowOverride, now)

	result := &dto.CreateReservationResult{
		CanCreate:        check.CanCreate,
		RequiresOverride: check.RequiresOverride,
		Errors:           check.Errors,
		Warnings:         check.Warnings,
	}
	if !check.CanCreate {
		return result, nil
	}

	r := &model.Reservation{
		ID:              uuid.New().String(),
		ProductID:       input.ProductID,
		Quantity:        input.Quantity,
		ReservedFor:     input.Appointment.ID,
		ReservedForType: model.ReservedForAppointment,
		ExpiresAt:       input.ExpiresAt,
		CreatedAt:       now,
	}

	if err := uc.repo.Save(ctx, r); err != nil {
		return nil, err
	}

	for _, w := range check.Warnings {
		uc.logger.Warn("reservation created with warning",
			zap.String("reservation_id", r.ID),
			zap.String("product_id", r.ProductID),
			zap.String("warning", w),
		)
	}

	result.Reservation = r
	return result, nil
}

func (uc *reservationUseCase) Replace(ctx context.Context, r *model.Reservation) error {
	if r == nil || r.ID == "" {
		return fmt.Errorf("%w: reservation with id is required", model.ErrInvalidArgument)
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("%w: reservation quantity must be positive", model.ErrInvalidQuantity)
	}
	return uc.repo.Update(ctx, r)
}

func (uc *reservationUseCase) Release(ctx context.Context, input *dto.ReleaseReservationInput) (*dto.ReleaseReservationResult, error) {
	r, err := uc.repo.FindByID(ctx, input.ReservationID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		// Releasing a missing hold is a no-op, not a failure: the caller's
		// cleanup already happened.
		return &dto.ReleaseReservationResult{Released: false,
			Warnings: []string{fmt.Sprintf("reservation %s not found", input.ReservationID)}}, nil
	}

	check := reservation.ValidateRelease(r, input.Appointment, uc.clock.Now())
	for _, w := range check.Warnings {
		uc.logger.Warn("reservation released with warning",
			zap.String("reservation_id", r.ID),
			zap.String("warning", w),
		)
	}

	if err := uc.repo.Delete(ctx, r.ID); err != nil {
		return nil, err
	}
	return &dto.ReleaseReservationResult{Released: true, Warnings: check.Warnings}, nil
}

func (uc *reservationUseCase) ReleaseFor(ctx context.Context, reservedFor string, forType model.ReservedForType) (int, error) {
	holds, err := uc.repo.FindByReservedFor(ctx, reservedFor, forType)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, r := range holds {
		if err := uc.repo.Delete(ctx, r.ID); err != nil {
			return released, err
		}
		released++
	}
	return released, nil
}

func (uc *reservationUseCase) SweepExpired(ctx context.Context) (int, error) {
	now := uc.clock.Now()
	expired, err := uc.repo.FindExpired(ctx, now, 100)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, r := range expired {
		if err := uc.repo.Delete(ctx, r.ID); err != nil {
			return released, err
		}
		released++
	}
	if released > 0 {
		uc.logger.Info("swept expired reservations", zap.Int("count", released))
	}
	return released, nil
}

// lockProduct takes the product's shared stock lock (cache.ProductLockKey),
// the same key the ledger's decrement path holds, so a hold and a sale can
// never both pass an availability check against the same figure.
func (uc *reservationUseCase) lockProduct(ctx context.Context, productID string) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}

	lockKey := cache.ProductLockKey(productID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return nil, errors.New("system busy, please try again later (lock)")
	}

	return func() {
		if err := uc.cache.ReleaseLock(context.Background(), lockKey, lockValue); err != nil {
			uc.logger.Error("failed to release lock", zap.Error(err))
		}
	}, nil
}

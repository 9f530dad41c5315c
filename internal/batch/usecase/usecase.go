package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/avolut/retail-stock-service/internal/batch"
	"github.com/avolut/retail-stock-service/internal/batch/dto"
	"github.com/avolut/retail-stock-service/internal/model"
	"github.com/avolut/retail-stock-service/internal/product"
	"github.com/avolut/retail-stock-service/pkg/clock"
	"github.com/avolut/retail-stock-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type batchUseCase struct {
	repo        batch.Repository
	productRepo product.Repository
	clock       clock.Clock
	logger      logger.ZapLogger
}

func NewBatchUseCase(repo batch.Repository, productRepo product.Repository, clk clock.Clock, log logger.ZapLogger) batch.UseCase {
	return &batchUseCase{
		repo:        repo,
		productRepo: productRepo,
		clock:       clk,
		logger:      log,
	}
}

func (uc *batchUseCase) Receive(ctx context.Context, input *dto.ReceiveBatchInput) (*model.StockBatch, error) {
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

	now := uc.clock.Now()
	if err := batch.ValidateReceipt(input.Quantity, input.ExpiryDate, now); err != nil {
		return nil, err
	}

	batchNumber := input.BatchNumber
	if batchNumber != nil && *batchNumber == "" {
		batchNumber = nil
	}

	// A numbered receipt merges into the existing lot, so a differing expiry
	// would be silently discarded by the upsert. A re-dated lot is a
	// different physical lot and needs its own batch number.
	if batchNumber != nil {
		existing, err := uc.repo.FindByProductAndBatch(ctx, input.ProductID, *batchNumber)
		if err != nil {
			return nil, err
		}
		if existing != nil && !sameExpiry(existing.ExpiryDate, input.ExpiryDate) {
			return nil, fmt.Errorf("%w: batch %s already exists with a different expiry date", model.ErrConflict, *batchNumber)
		}
	}

	b, err := uc.repo.CreateOrIncrement(ctx, &dto.ReceiveBatchParams{
		ID:          uuid.New().String(),
		ProductID:   input.ProductID,
		BatchNumber: batchNumber,
		Quantity:    input.Quantity,
		ExpiryDate:  input.ExpiryDate,
		ReceivedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("batch received",
		zap.String("batch_id", b.ID),
		zap.String("product_id", b.ProductID),
		zap.Int64("quantity", b.Quantity),
	)
	return b, nil
}

func sameExpiry(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func (uc *batchUseCase) ListByProduct(ctx context.Context, productID string) ([]model.StockBatch, error) {
	return uc.repo.FindByProduct(ctx, productID)
}

func (uc *batchUseCase) ListSellable(ctx context.Context, productID string) ([]model.StockBatch, error) {
	batches, err := uc.repo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	sellable := make([]model.StockBatch, 0, len(batches))
	for _, b := range batches {
		if b.CanBeSold(now) {
			sellable = append(sellable, b)
		}
	}
	return sellable, nil
}

func (uc *batchUseCase) PickForSale(ctx context.Context, productID string, quantity int64) ([]batch.Allocation, error) {
	batches, err := uc.repo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return batch.AllocateFIFO(batches, quantity, uc.clock.Now())
}

func (uc *batchUseCase) Consume(ctx context.Context, batchID string, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: consume quantity must be positive, got %d", model.ErrInvalidQuantity, quantity)
	}
	return uc.repo.AdjustQuantity(ctx, batchID, -quantity)
}

package batch

import (
	"context"

	"github.com/avolut/retail-stock-service/internal/batch/dto"
	"github.com/avolut/retail-stock-service/internal/model"
)

// Repository persists lots. Batches are never deleted: zero-quantity lots
// stay behind for the audit trail.
type Repository interface {
	// CreateOrIncrement merges into the existing (product, batch number)
	// lot when the number is set, otherwise inserts a singleton unbatched
	// lot. Unbatched lots are never matched by product alone.
	CreateOrIncrement(ctx context.Context, params *dto.ReceiveBatchParams) (*model.StockBatch, error)

	// AdjustQuantity applies a delta, refusing any result below zero.
	AdjustQuantity(ctx context.Context, id string, delta int64) error

	FindByID(ctx context.Context, id string) (*model.StockBatch, error)
	FindByProductAndBatch(ctx context.Context, productID, batchNumber string) (*model.StockBatch, error)
	FindByProduct(ctx context.Context, productID string) ([]model.StockBatch, error)
}

package batch

import (
	"context"

	"github.com/avolut/retail-stock-service/internal/batch/dto"
	"github.com/avolut/retail-stock-service/internal/model"
)

type UseCase interface {
	Receive(ctx context.Context, input *dto.ReceiveBatchInput) (*model.StockBatch, error)
	ListByProduct(ctx context.Context, productID string) ([]model.StockBatch, error)
	ListSellable(ctx context.Context, productID string) ([]model.StockBatch, error)
	// PickForSale plans a FIFO consumption across sellable lots without
	// mutating anything; the ledger movement applies the actual delta.
	PickForSale(ctx context.Context, productID string, quantity int64) ([]Allocation, error)
	Consume(ctx context.Context, batchID string, quantity int64) error
}

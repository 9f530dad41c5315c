package ledger

import (
	"context"
	"time"

	"github.com/avolut/retail-stock-service/internal/ledger/dto"
	"github.com/avolut/retail-stock-service/internal/model"
)

type UseCase interface {
	Record(ctx context.Context, input *dto.RecordMovementInput) (*dto.RecordResult, error)
	Compensate(ctx context.Context, input *dto.CompensateInput) (*dto.RecordResult, error)
	Transfer(ctx context.Context, input *dto.TransferInput) (*dto.RecordResult, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
	GetOnHand(ctx context.Context, productID, locationID string) (int64, error)
	ListLowStock(ctx context.Context, page, pageSize int) ([]dto.LowStockItem, int, error)
	Reconcile(ctx context.Context, productID string, locationID string) (*dto.ReconciliationReport, error)
}

// ReservationReader is the slice of the reservation store the ledger needs
// to gate decrements on available (not just on-hand) stock.
type ReservationReader interface {
	SumActiveByProduct(ctx context.Context, productID string, referenceDate time.Time) (int64, error)
}

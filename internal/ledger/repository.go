package ledger

import (
	"context"
	"time"

	"github.com/avolut/retail-stock-service/internal/ledger/dto"
	"github.com/avolut/retail-stock-service/internal/model"
)

// Repository persists movements and the maintained on-hand counters. The
// movement side is append-only by construction: no update or delete is
// exposed.
type Repository interface {
	// Append inserts the movement and applies its delta to the stock level
	// counter (and the linked batch, when set) in one transaction.
	// Decrements are guarded at commit time; a stale sufficiency check
	// surfaces as model.ErrInsufficientStock.
	Append(ctx context.Context, m *model.StockMovement) error

	// AppendPair inserts two movements atomically (location transfers).
	AppendPair(ctx context.Context, out, in *model.StockMovement) error

	FindByID(ctx context.Context, id string) (*model.StockMovement, error)
	FindByReference(ctx context.Context, referenceID string) ([]model.StockMovement, error)
	Search(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error)

	// SumQuantity recomputes on-hand from the ledger (reconciliation only).
	SumQuantity(ctx context.Context, productID string, locationID *string) (int64, error)

	GetOnHand(ctx context.Context, productID, locationID string) (int64, error)

	// ListLowStock reports products whose available stock (on-hand minus
	// reservations active at referenceDate) is at or below their reorder
	// threshold.
	ListLowStock(ctx context.Context, referenceDate time.Time, page, pageSize int) ([]dto.LowStockItem, int, error)
}

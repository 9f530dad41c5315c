package reservation

import (
	"context"

	"github.com/avolut/retail-stock-service/internal/model"
	"github.com/avolut/retail-stock-service/internal/reservation/dto"
)

type UseCase interface {
	CreateForAppointment(ctx context.Context, input *dto.CreateReservationInput) (*dto.CreateReservationResult, error)
	// Replace swaps the whole reservation record (create-then-replace, not
	// a ledger entry).
	Replace(ctx context.Context, r *model.Reservation) error
	Release(ctx context.Context, input *dto.ReleaseReservationInput) (*dto.ReleaseReservationResult, error)
	ReleaseFor(ctx context.Context, reservedFor string, forType model.ReservedForType) (int, error)
	SweepExpired(ctx context.Context) (int, error)
}

// StockReader is the slice of the ledger needed to gate new holds.
type StockReader interface {
	GetOnHand(ctx context.Context, productID, locationID string) (int64, error)
}

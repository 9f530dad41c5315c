package reservation

import (
	"context"
	"time"

	"github.com/avolut/retail-stock-service/internal/model"
)

type Repository interface {
	Save(ctx context.Context, r *model.Reservation) error
	// Update is a whole-record replace; quantities are never patched in place.
	Update(ctx context.Context, r *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindByProduct(ctx context.Context, productID string) ([]model.Reservation, error)
	FindByReservedFor(ctx context.Context, reservedFor string, forType model.ReservedForType) ([]model.Reservation, error)
	Delete(ctx context.Context, id string) error

	SumActiveByProduct(ctx context.Context, productID string, referenceDate time.Time) (int64, error)
	FindExpired(ctx context.Context, referenceDate time.Time, limit int) ([]model.Reservation, error)
}

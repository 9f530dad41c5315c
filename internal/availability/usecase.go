package availability

import (
	"context"
	"time"

	"github.com/avolut/retail-stock-service/internal/model"
)

type UseCase interface {
	CheckProduct(ctx context.Context, productID, locationID string, requiredQuantity int64) (*ProductAvailability, error)
	CheckService(ctx context.Context, serviceID, locationID string) (*ServiceAvailability, error)
}

// StockReader is the slice of the ledger the calculator needs.
type StockReader interface {
	GetOnHand(ctx context.Context, productID, locationID string) (int64, error)
}

// ReservationLister is the slice of the reservation store the calculator needs.
type ReservationLister interface {
	FindByProduct(ctx context.Context, productID string) ([]model.Reservation, error)
}

// ProductReader resolves stock profiles for products and services.
type ProductReader interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	FindServiceByID(ctx context.Context, id string) (*model.Service, error)
}

// Clock supplies the reference date for expiry evaluation.
type Clock interface {
	Now() time.Time
}

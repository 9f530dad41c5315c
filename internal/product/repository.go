package product

import (
	"context"

	"github.com/avolut/retail-stock-service/internal/model"
)

// Repository is read-only here: product stock profiles are mutated by
// product management outside the stock engine.
type Repository interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	FindServiceByID(ctx context.Context, id string) (*model.Service, error)
}

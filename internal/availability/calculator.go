// Package availability derives consumable stock: on-hand minus active
// reservations. All functions are pure; callers supply the data and the
// reference date.
package availability

import (
	"fmt"
	"time"

	"github.com/avolut/retail-stock-service/internal/model"
)

// AvailableStock is the availability figure for one product. Non-tracked
// products report Unlimited and never a finite quantity: they impose no
// constraint anywhere in the system.
type AvailableStock struct {
	Unlimited bool  `json:"unlimited"`
	Quantity  int64 `json:"quantity"`
}

func Unlimited() AvailableStock {
	return AvailableStock{Unlimited: true}
}

func Finite(quantity int64) AvailableStock {
	return AvailableStock{Quantity: quantity}
}

// Satisfies reports whether the figure covers the required quantity.
func (a AvailableStock) Satisfies(required int64) bool {
	return a.Unlimited || a.Quantity >= required
}

// CalculateReservedQuantity sums all active reservations for the product,
// regardless of who reserved them: availability is a property of the
// product, not of the requester.
func CalculateReservedQuantity(productID string, reservations []model.Reservation, referenceDate time.Time) int64 {
	var total int64
	for _, r := range reservations {
		if r.ProductID == productID && r.Active(referenceDate) {
			total += r.Quantity
		}
	}
	return total
}

// CalculateAvailableStock returns max(0, onHand - active reservations) for
// tracked products, and the unlimited sentinel otherwise. Expired
// reservations contribute zero.
func CalculateAvailableStock(product *model.Product, onHand int64, reservations []model.Reservation, referenceDate time.Time) AvailableStock {
	if product == nil || !product.StockTracked {
		return Unlimited()
	}

	available := onHand - CalculateReservedQuantity(product.ID, reservations, referenceDate)
	if available < 0 {
		available = 0
	}
	return Finite(available)
}

// ProductAvailability is the rich answer to "can I take N units of this?".
type ProductAvailability struct {
	ProductID        string         `json:"product_id"`
	RequiredQuantity int64          `json:"required_quantity"`
	AvailableStock   AvailableStock `json:"available_stock"`
	IsAvailable      bool           `json:"is_available"`
	Shortfall        int64          `json:"shortfall"`
}

func CalculateProductAvailability(product *model.Product, requiredQuantity, onHand int64, reservations []model.Reservation, referenceDate time.Time) (*ProductAvailability, error) {
	if requiredQuantity <= 0 {
		return nil, fmt.Errorf("%w: required quantity must be positive, got %d", model.ErrInvalidArgument, requiredQuantity)
	}
	if onHand < 0 {
		return nil, fmt.Errorf("%w: on-hand stock cannot be negative, got %d", model.ErrInvalidArgument, onHand)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product is required", model.ErrInvalidArgument)
	}

	available := CalculateAvailableStock(product, onHand, reservations, referenceDate)

	shortfall := int64(0)
	if !available.Unlimited && requiredQuantity > available.Quantity {
		shortfall = requiredQuantity - available.Quantity
	}

	return &ProductAvailability{
		ProductID:        product.ID,
		RequiredQuantity: requiredQuantity,
		AvailableStock:   available,
		IsAvailable:      available.Satisfies(requiredQuantity),
		Shortfall:        shortfall,
	}, nil
}

// ServiceAvailability aggregates per-item availability for a composite
// service. There is no partial fulfillment: one short item makes the whole
// service unavailable.
type ServiceAvailability struct {
	ServiceID           string                `json:"service_id"`
	IsAvailable         bool                  `json:"is_available"`
	UnavailableProducts []string              `json:"unavailable_products"`
	Items               []ProductAvailability `json:"items"`
}

// ValidateServiceAvailability evaluates every consumed item independently.
// Services that consume nothing are trivially available.
func ValidateServiceAvailability(service *model.Service, products map[string]*model.Product, onHand map[string]int64, reservations []model.Reservation, referenceDate time.Time) (*ServiceAvailability, error) {
	if service == nil {
		return nil, fmt.Errorf("%w: service is required", model.ErrInvalidArgument)
	}

	result := &ServiceAvailability{ServiceID: service.ID, IsAvailable: true}
	if !service.ConsumesInventory || len(service.Items) == 0 {
		return result, nil
	}

	for _, item := range service.Items {
		p := products[item.ProductID]
		pa, err := CalculateProductAvailability(p, item.Quantity, onHand[item.ProductID], reservations, referenceDate)
		if err != nil {
			return nil, fmt.Errorf("service item %s: %w", item.ProductID, err)
		}
		result.Items = append(result.Items, *pa)
		if !pa.IsAvailable {
			result.IsAvailable = false
			result.UnavailableProducts = append(result.UnavailableProducts, item.ProductID)
		}
	}

	return result, nil
}

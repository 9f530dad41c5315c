package model

import (
	"fmt"
	"time"
)

// StockBatch is a received lot of a product, optionally carrying a supplier
// batch number and an expiry date. Zero-quantity batches are retained for
// audit continuity, never deleted.
type StockBatch struct {
	ID          string     `db:"id" json:"id"`
	ProductID   string     `db:"product_id" json:"product_id"`
	BatchNumber *string    `db:"batch_number" json:"batch_number"` // Nullable; unbatched lots never merge
	Quantity    int64      `db:"quantity" json:"quantity"`         // >= 0
	ExpiryDate  *time.Time `db:"expiry_date" json:"expiry_date"`   // Nullable
	ReceivedAt  time.Time  `db:"received_at" json:"received_at"`
}

// Expired reports whether the batch is past its expiry at referenceDate.
// Batches without an expiry date never expire.
func (b *StockBatch) Expired(referenceDate time.Time) bool {
	return b.ExpiryDate != nil && referenceDate.After(*b.ExpiryDate)
}

// CanBeSold reports whether the batch is eligible for a sale pick at
// referenceDate. Expiry is evaluated at read time; the quantity of an
// expired batch is left untouched.
func (b *StockBatch) CanBeSold(referenceDate time.Time) bool {
	return b.Quantity > 0 && !b.Expired(referenceDate)
}

func (b *StockBatch) Increase(quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: increase must be positive, got %d", ErrInvalidQuantity, quantity)
	}
	b.Quantity += quantity
	return nil
}

func (b *StockBatch) Decrease(quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: decrease must be positive, got %d", ErrInvalidQuantity, quantity)
	}
	if b.Quantity-quantity < 0 {
		return fmt.Errorf("%w: batch %s holds %d, cannot remove %d", ErrInvalidQuantity, b.ID, b.Quantity, quantity)
	}
	b.Quantity -= quantity
	return nil
}

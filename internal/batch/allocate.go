// Package batch tracks per-lot quantity and expiry so receipts merge into
// existing lots and sales never pick expired stock.
package batch

import (
	"fmt"
	"sort"
	"time"

	"github.com/avolut/retail-stock-service/internal/model"
)

// Allocation is one slice of a FIFO pick.
type Allocation struct {
	BatchID  string `json:"batch_id"`
	Quantity int64  `json:"quantity"`
}

// AllocateFIFO distributes quantity across sellable batches oldest-first.
// Expired lots are skipped no matter how much they still hold. The input
// slice is not mutated.
func AllocateFIFO(batches []model.StockBatch, quantity int64, referenceDate time.Time) ([]Allocation, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: pick quantity must be positive, got %d", model.ErrInvalidQuantity, quantity)
	}

	sellable := make([]model.StockBatch, 0, len(batches))
	for _, b := range batches {
		if b.CanBeSold(referenceDate) {
			sellable = append(sellable, b)
		}
	}
	sort.Slice(sellable, func(i, j int) bool {
		return sellable[i].ReceivedAt.Before(sellable[j].ReceivedAt)
	})

	var allocations []Allocation
	remaining := quantity
	for _, b := range sellable {
		if remaining == 0 {
			break
		}
		take := b.Quantity
		if take > remaining {
			take = remaining
		}
		allocations = append(allocations, Allocation{BatchID: b.ID, Quantity: take})
		remaining -= take
	}

	if remaining > 0 {
		return nil, fmt.Errorf("%w: %d of %d units not coverable by sellable batches",
			model.ErrInsufficientStock, remaining, quantity)
	}
	return allocations, nil
}

// ValidateReceipt runs the structural checks for a new or merged lot.
func ValidateReceipt(quantity int64, expiryDate *time.Time, receivedAt time.Time) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: receipt quantity must be positive, got %d", model.ErrInvalidQuantity, quantity)
	}
	if expiryDate != nil && expiryDate.Before(receivedAt) {
		return fmt.Errorf("%w: expiry %s precedes receipt %s",
			model.ErrInvalidArgument, expiryDate.Format(time.RFC3339), receivedAt.Format(time.RFC3339))
	}
	return nil
}

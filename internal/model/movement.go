package model

import "time"

type MovementReason string

const (
	ReasonReceipt            MovementReason = "RECEIPT"
	ReasonSale               MovementReason = "SALE"
	ReasonAdjustment         MovementReason = "ADJUSTMENT"
	ReasonTransfer           MovementReason = "TRANSFER"
	ReasonReservationRelease MovementReason = "RESERVATION_RELEASE"
)

func (r MovementReason) Valid() bool {
	switch r {
	case ReasonReceipt, ReasonSale, ReasonAdjustment, ReasonTransfer, ReasonReservationRelease:
		return true
	}
	return false
}

// Inbound reports whether the reason conventionally adds stock. The sign of
// QuantityChange is authoritative; reason is advisory metadata, so a mismatch
// is surfaced as a warning rather than rejected.
func (r MovementReason) Inbound() bool {
	return r == ReasonReceipt || r == ReasonReservationRelease
}

// Directional reports whether the reason implies a conventional sign.
// Adjustments and transfers legitimately go both ways.
func (r MovementReason) Directional() bool {
	return r != ReasonAdjustment && r != ReasonTransfer
}

// StockMovement is one immutable entry of the append-only stock ledger.
// On-hand stock at any instant is the sum of QuantityChange over movements.
type StockMovement struct {
	ID             string         `db:"id" json:"id"`
	ProductID      string         `db:"product_id" json:"product_id"`
	QuantityChange int64          `db:"quantity_change" json:"quantity_change"` // non-zero; positive = inbound
	Reason         MovementReason `db:"reason" json:"reason"`
	PerformedBy    string         `db:"performed_by" json:"performed_by"`
	LocationID     string         `db:"location_id" json:"location_id"`
	BatchID        *string        `db:"batch_id" json:"batch_id"`         // Nullable
	ReferenceID    *string        `db:"reference_id" json:"reference_id"` // Nullable, originating document
	Notes          string         `db:"notes" json:"notes"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

func (m *StockMovement) IsDecrement() bool {
	return m.QuantityChange < 0
}

// NetChange sums quantity deltas across movements. Used by reconciliation
// and to confirm that a compensation round-trips to zero.
func NetChange(movements []StockMovement) int64 {
	var total int64
	for _, m := range movements {
		total += m.QuantityChange
	}
	return total
}

// IsBalanced reports whether the movements for a product sum to zero.
func IsBalanced(movements []StockMovement, productID string) bool {
	var total int64
	for _, m := range movements {
		if m.ProductID == productID {
			total += m.QuantityChange
		}
	}
	return total == 0
}

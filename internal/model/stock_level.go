package model

import "time"

// StockLevel is the maintained on-hand counter per (product, location). It
// is updated atomically in the same transaction as the movement append; the
// ledger sum is recomputed only for reconciliation, never on the hot path.
type StockLevel struct {
	ProductID  string    `db:"product_id" json:"product_id"`
	LocationID string    `db:"location_id" json:"location_id"`
	OnHand     int64     `db:"on_hand" json:"on_hand"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

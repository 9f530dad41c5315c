package dto

import (
	"time"

	"github.com/avolut/retail-stock-service/internal/model"
)

type MovementFilters struct {
	ProductID   string
	LocationID  string
	Reason      string
	BatchID     string
	ReferenceID string
	SearchQuery string // free text over notes, ES-accelerated
	StartDate   *time.Time
	EndDate     *time.Time
	Page        int
	PageSize    int
}

// Offset converts the 1-based page to a row offset. Page values below 1 are
// treated as the first page so callers can leave Page unset.
func (f *MovementFilters) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.PageSize
}

// RecordResult carries the appended movement plus any advisory warnings
// (reason/sign mismatches, low-stock notices).
type RecordResult struct {
	Movement *model.StockMovement
	Warnings []string
}

type LowStockItem struct {
	ProductID        string `db:"product_id" json:"product_id"`
	LocationID       string `db:"location_id" json:"location_id"`
	OnHand           int64  `db:"on_hand" json:"on_hand"`
	Available        int64  `db:"available" json:"available"`
	ReorderThreshold int64  `db:"reorder_threshold" json:"reorder_threshold"`
}

// ReconciliationReport compares the maintained on-hand counter against the
// ledger sum. Drift of zero means the two representations agree.
type ReconciliationReport struct {
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
	OnHand     int64  `json:"on_hand"`
	LedgerSum  int64  `json:"ledger_sum"`
	Drift      int64  `json:"drift"`
}

type LowStockEvent struct {
	EventType        string    `json:"event_type"`
	ProductID        string    `json:"product_id"`
	LocationID       string    `json:"location_id"`
	OnHand           int64     `json:"on_hand"`
	Available        int64     `json:"available"`
	ReorderThreshold int64     `json:"reorder_threshold"`
	Timestamp        time.Time `json:"timestamp"`
}

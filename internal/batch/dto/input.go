package dto

import "time"

type ReceiveBatchInput struct {
	ProductID   string
	BatchNumber *string // nil = unbatched singleton lot
	Quantity    int64
	ExpiryDate  *time.Time
}

// ReceiveBatchParams is the persistence-shaped form of a receipt, with the
// identity and timestamps already assigned.
type ReceiveBatchParams struct {
	ID          string     `db:"id"`
	ProductID   string     `db:"product_id"`
	BatchNumber *string    `db:"batch_number"`
	Quantity    int64      `db:"quantity"`
	ExpiryDate  *time.Time `db:"expiry_date"`
	ReceivedAt  time.Time  `db:"received_at"`
}

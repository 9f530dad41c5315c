package model

import "time"

type ReservedForType string

const (
	ReservedForAppointment ReservedForType = "APPOINTMENT"
	ReservedForOrder       ReservedForType = "ORDER"
)

// Reservation is a time-bounded hold against available stock. It never
// touches on-hand stock; active reservations only subtract from the
// availability figure. Expiry is derived at read time from ExpiresAt, the
// record itself is never mutated to mark it expired.
type Reservation struct {
	ID              string          `db:"id" json:"id"`
	ProductID       string          `db:"product_id" json:"product_id"`
	Quantity        int64           `db:"quantity" json:"quantity"` // > 0
	ReservedFor     string          `db:"reserved_for" json:"reserved_for"`
	ReservedForType ReservedForType `db:"reserved_for_type" json:"reserved_for_type"`
	ExpiresAt       *time.Time      `db:"expires_at" json:"expires_at"` // Nullable = no expiry
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

func (r *Reservation) Expired(referenceDate time.Time) bool {
	return r.ExpiresAt != nil && referenceDate.After(*r.ExpiresAt)
}

// Active reports whether the reservation still reduces availability.
func (r *Reservation) Active(referenceDate time.Time) bool {
	return !r.Expired(referenceDate)
}

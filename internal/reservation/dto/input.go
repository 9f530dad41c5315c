package dto

import (
	"time"

	"github.com/avolut/retail-stock-service/internal/model"
)

type CreateReservationInput struct {
	ProductID     string
	Quantity      int64
	LocationID    string
	Appointment   *model.Appointment // the consuming entity; engine reads status and window only
	ExpiresAt     *time.Time
	AllowOverride bool
}

type ReleaseReservationInput struct {
	ReservationID string
	Appointment   *model.Appointment // optional; enriches release warnings
}

// Package reservation manages time-bounded holds against available stock.
// A reservation never moves physical stock; it only subtracts from the
// availability figure while active. Expiry is derived from ExpiresAt at
// read time, never written back to the record.
package reservation

import (
	"fmt"
	"time"

	"github.com/avolut/retail-stock-service/internal/availability"
	"github.com/avolut/retail-stock-service/internal/model"
)

// CreateCheck is the outcome of the pure create validation. Hard failures
// populate Errors; override and expiry-timing findings are warnings.
type CreateCheck struct {
	CanCreate        bool     `json:"can_create"`
	RequiresOverride bool     `json:"requires_override"`
	Errors           []string `json:"errors"`
	Warnings         []string `json:"warnings"`
}

func (c *CreateCheck) addError(msg string) {
	c.CanCreate = false
	c.Errors = append(c.Errors, msg)
}

// ValidateCreateForAppointment checks whether a hold may be created. The
// caller supplies the availability figure; insufficient stock blocks the
// hold unless allowOverride is set, in which case creation proceeds flagged
// RequiresOverride with a warning.
func ValidateCreateForAppointment(
	product *model.Product,
	quantity int64,
	appointment *model.Appointment,
	available availability.AvailableStock,
	expiresAt *time.Time,
	allowOverride bool,
	referenceDate time.Time,
) *CreateCheck {
	check := &CreateCheck{CanCreate: true}

	if product == nil {
		check.addError("reservation references an unknown product")
		return check
	}
	if !product.StockTracked {
		check.addError(fmt.Sprintf("product %s is not stock tracked", product.ID))
		return check
	}
	if quantity <= 0 {
		check.addError(fmt.Sprintf("reservation quantity must be positive, got %d", quantity))
	}

	if expiresAt != nil && !expiresAt.After(referenceDate) {
		check.addError("expires_at must be strictly in the future")
	}

	if !available.Satisfies(quantity) {
		check.RequiresOverride = true
		if allowOverride {
			check.Warnings = append(check.Warnings, fmt.Sprintf(
				"override applied: reserving %d with only %d available", quantity, available.Quantity))
		} else {
			check.addError(fmt.Sprintf(
				"insufficient stock: %d requested, %d available", quantity, available.Quantity))
		}
	}

	// A hold lapsing before the appointment ends is an operator-visible
	// risk, not a blocking condition.
	if appointment != nil && expiresAt != nil && !expiresAt.After(appointment.EndAt) {
		check.Warnings = append(check.Warnings, fmt.Sprintf(
			"reservation expires at %s, before appointment end %s",
			expiresAt.Format(time.RFC3339), appointment.EndAt.Format(time.RFC3339)))
	}

	return check
}

// ReleaseCheck carries the advisory findings of a release. Release always
// succeeds structurally.
type ReleaseCheck struct {
	Warnings []string `json:"warnings"`
}

func ValidateRelease(r *model.Reservation, appointment *model.Appointment, referenceDate time.Time) *ReleaseCheck {
	check := &ReleaseCheck{}
	if r == nil {
		return check
	}

	if r.Expired(referenceDate) {
		check.Warnings = append(check.Warnings, fmt.Sprintf("reservation %s was already expired", r.ID))
	}
	if appointment != nil {
		if appointment.Cancelled() {
			check.Warnings = append(check.Warnings, fmt.Sprintf("linked appointment %s is cancelled", appointment.ID))
		}
		if appointment.Completed() {
			check.Warnings = append(check.Warnings, fmt.Sprintf("linked appointment %s is completed", appointment.ID))
		}
	}
	return check
}

// ShouldRelease reports whether the hold has lapsed: expired, or linked to
// a cancelled appointment. Completed appointments do NOT auto-release; the
// physical decrement and the release are two independent orchestrator
// calls, neither implies the other.
func ShouldRelease(r *model.Reservation, appointment *model.Appointment, referenceDate time.Time) bool {
	if r == nil {
		return false
	}
	if r.Expired(referenceDate) {
		return true
	}
	return appointment != nil && appointment.Cancelled()
}

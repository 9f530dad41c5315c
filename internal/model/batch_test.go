package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var refDate = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestStockBatch_CanBeSold(t *testing.T) {
	future := refDate.AddDate(0, 1, 0)
	b := StockBatch{ID: "b1", ProductID: "p1", Quantity: 10, ExpiryDate: &future, ReceivedAt: refDate}
	assert.True(t, b.CanBeSold(refDate))

	// Expired stock keeps its quantity but is never pickable.
	past := refDate.Add(-time.Hour)
	b.ExpiryDate = &past
	assert.False(t, b.CanBeSold(refDate))
	assert.Equal(t, int64(10), b.Quantity)

	b.ExpiryDate = nil
	assert.True(t, b.CanBeSold(refDate))

	b.Quantity = 0
	assert.False(t, b.CanBeSold(refDate))
}

func TestStockBatch_ExpiryBoundary(t *testing.T) {
	b := StockBatch{ID: "b1", Quantity: 1, ExpiryDate: &refDate}
	// Exactly at the expiry instant the batch is still sellable.
	assert.True(t, b.CanBeSold(refDate))
	assert.False(t, b.CanBeSold(refDate.Add(time.Second)))
}

func TestStockBatch_QuantityGuards(t *testing.T) {
	b := StockBatch{ID: "b1", Quantity: 5}

	assert.NoError(t, b.Increase(3))
	assert.Equal(t, int64(8), b.Quantity)

	assert.NoError(t, b.Decrease(8))
	assert.Equal(t, int64(0), b.Quantity)

	assert.ErrorIs(t, b.Decrease(1), ErrInvalidQuantity)
	assert.ErrorIs(t, b.Increase(0), ErrInvalidQuantity)
	assert.ErrorIs(t, b.Increase(-1), ErrInvalidQuantity)
	assert.ErrorIs(t, b.Decrease(-1), ErrInvalidQuantity)
	assert.Equal(t, int64(0), b.Quantity, "failed mutations leave the quantity untouched")
}

func TestReservation_ExpiryIsDerived(t *testing.T) {
	r := Reservation{ID: "r1", ProductID: "p1", Quantity: 2}
	assert.True(t, r.Active(refDate), "no expiry means always active")

	at := refDate
	r.ExpiresAt = &at
	assert.True(t, r.Active(refDate), "active up to and including the expiry instant")
	assert.True(t, r.Expired(refDate.Add(time.Second)))
}

func TestMovementReason(t *testing.T) {
	assert.True(t, ReasonReceipt.Inbound())
	assert.True(t, ReasonReservationRelease.Inbound())
	assert.False(t, ReasonSale.Inbound())
	assert.False(t, ReasonAdjustment.Inbound())
	assert.False(t, MovementReason("BOGUS").Valid())

	assert.True(t, ReasonSale.Directional())
	assert.False(t, ReasonAdjustment.Directional(), "adjustments carry either sign")
	assert.False(t, ReasonTransfer.Directional())
}

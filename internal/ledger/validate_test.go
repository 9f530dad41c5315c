package ledger

import (
	"testing"
	"time"

	"github.com/avolut/retail-stock-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trackedProduct(id string) *model.Product {
	return &model.Product{
		BaseModel:    model.BaseModel{ID: id},
		SKU:          "SKU-" + id,
		Name:         "Product " + id,
		StockTracked: true,
	}
}

func validMovement() *model.StockMovement {
	return &model.StockMovement{
		ID:             "mov-1",
		ProductID:      "p1",
		QuantityChange: 5,
		Reason:         model.ReasonReceipt,
		PerformedBy:    "staff-1",
		LocationID:     "store-1",
		CreatedAt:      time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestValidateLegality_Valid(t *testing.T) {
	result := ValidateLegality(validMovement(), trackedProduct("p1"), nil)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateLegality_NotStockTracked(t *testing.T) {
	p := trackedProduct("p1")
	p.StockTracked = false

	result := ValidateLegality(validMovement(), p, nil)

	assert.False(t, result.IsValid)
	assert.Len(t, result.Errors, 1)
}

func TestValidateLegality_StructuralErrors(t *testing.T) {
	m := validMovement()
	m.QuantityChange = 0
	m.PerformedBy = ""
	m.LocationID = ""
	m.Reason = "BOGUS"

	result := ValidateLegality(m, trackedProduct("p1"), nil)

	assert.False(t, result.IsValid)
	assert.Len(t, result.Errors, 4)
}

func TestValidateLegality_ReasonSignMismatchIsWarning(t *testing.T) {
	m := validMovement()
	m.QuantityChange = -3 // RECEIPT with a negative delta

	result := ValidateLegality(m, trackedProduct("p1"), nil)

	assert.True(t, result.IsValid, "sign mismatch must not block the movement")
	assert.Len(t, result.Warnings, 1)

	m2 := validMovement()
	m2.Reason = model.ReasonSale
	m2.QuantityChange = 3

	result2 := ValidateLegality(m2, trackedProduct("p1"), nil)
	assert.True(t, result2.IsValid)
	assert.Len(t, result2.Warnings, 1)

	// Adjustments go both ways; neither sign is suspicious.
	m3 := validMovement()
	m3.Reason = model.ReasonAdjustment
	m3.QuantityChange = 3
	assert.Empty(t, ValidateLegality(m3, trackedProduct("p1"), nil).Warnings)
	m3.QuantityChange = -3
	assert.Empty(t, ValidateLegality(m3, trackedProduct("p1"), nil).Warnings)
}

func TestValidateLegality_DecrementAgainstAvailable(t *testing.T) {
	m := validMovement()
	m.Reason = model.ReasonSale
	m.QuantityChange = -5

	available := int64(3)
	result := ValidateLegality(m, trackedProduct("p1"), &available)
	assert.False(t, result.IsValid)

	available = 5
	result = ValidateLegality(m, trackedProduct("p1"), &available)
	assert.True(t, result.IsValid)

	// Without the figure supplied the ledger does not gate decrements.
	result = ValidateLegality(m, trackedProduct("p1"), nil)
	assert.True(t, result.IsValid)
}

func TestCompensate_NetsToZero(t *testing.T) {
	batchID := "batch-9"
	original := validMovement()
	original.BatchID = &batchID

	now := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)
	comp, err := Compensate(original, "mov-2", "manager-1", "", nil, now)
	require.NoError(t, err)

	assert.Equal(t, -original.QuantityChange, comp.QuantityChange)
	assert.Equal(t, original.ProductID, comp.ProductID)
	assert.Equal(t, original.LocationID, comp.LocationID)
	assert.Equal(t, original.BatchID, comp.BatchID)
	assert.Equal(t, model.ReasonAdjustment, comp.Reason, "reason defaults to ADJUSTMENT")
	require.NotNil(t, comp.ReferenceID)
	assert.Equal(t, original.ID, *comp.ReferenceID, "links back to the corrected movement")

	assert.Equal(t, int64(0), model.NetChange([]model.StockMovement{*original, *comp}))
	assert.True(t, model.IsBalanced([]model.StockMovement{*original, *comp}, original.ProductID))
}

func TestCompensate_ExplicitReference(t *testing.T) {
	ref := "reconciliation-42"
	comp, err := Compensate(validMovement(), "mov-2", "manager-1", model.ReasonAdjustment, &ref, time.Now())
	require.NoError(t, err)
	assert.Equal(t, ref, *comp.ReferenceID)
}

func TestCompensate_InvalidInputs(t *testing.T) {
	_, err := Compensate(nil, "mov-2", "manager-1", "", nil, time.Now())
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = Compensate(validMovement(), "", "manager-1", "", nil, time.Now())
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = Compensate(validMovement(), "mov-2", "", "", nil, time.Now())
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = Compensate(validMovement(), "mov-2", "manager-1", "BOGUS", nil, time.Now())
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestDeleteGuard_AlwaysFails(t *testing.T) {
	assert.False(t, DeleteGuard(validMovement()).IsValid)
	assert.False(t, DeleteGuard(nil).IsValid)
}

func TestNetChange_Empty(t *testing.T) {
	assert.Equal(t, int64(0), model.NetChange(nil))
}

func TestIsBalanced_FiltersByProduct(t *testing.T) {
	movements := []model.StockMovement{
		{ProductID: "p1", QuantityChange: 4},
		{ProductID: "p1", QuantityChange: -4},
		{ProductID: "p2", QuantityChange: 7},
	}
	assert.True(t, model.IsBalanced(movements, "p1"))
	assert.False(t, model.IsBalanced(movements, "p2"))
}

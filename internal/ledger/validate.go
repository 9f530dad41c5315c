// Package ledger implements the append-only stock movement ledger. The
// ledger is the only component that changes on-hand stock; persisted
// movements are never updated or deleted, mistakes are corrected by
// compensating movements.
package ledger

import (
	"fmt"
	"time"

	"github.com/avolut/retail-stock-service/internal/model"
)

// ValidateLegality runs the pure structural checks for a movement before it
// may be appended. availableStock is optional: the ledger holds no stock
// cache, so the caller supplies the figure when it wants decrements gated.
func ValidateLegality(m *model.StockMovement, product *model.Product, availableStock *int64) *model.ValidationResult {
	result := model.NewValidationResult()

	if product == nil {
		result.AddError("movement references an unknown product")
		return result
	}
	if !product.StockTracked {
		result.AddError(fmt.Sprintf("product %s is not stock tracked", product.ID))
		return result
	}

	if m.QuantityChange == 0 {
		result.AddError("quantity change must be non-zero")
	}
	if m.PerformedBy == "" {
		result.AddError("performed_by is required")
	}
	if m.LocationID == "" {
		result.AddError("location_id is required")
	}
	if !m.Reason.Valid() {
		result.AddError(fmt.Sprintf("unknown movement reason %q", m.Reason))
	}

	// Reason is advisory metadata; a sign mismatch is logged, not rejected.
	if m.Reason.Valid() && m.Reason.Directional() && m.QuantityChange != 0 {
		if m.Reason.Inbound() && m.QuantityChange < 0 {
			result.AddWarning(fmt.Sprintf("reason %s is inbound but quantity change is %d", m.Reason, m.QuantityChange))
		}
		if !m.Reason.Inbound() && m.QuantityChange > 0 {
			result.AddWarning(fmt.Sprintf("reason %s is outbound but quantity change is %d", m.Reason, m.QuantityChange))
		}
	}

	if m.IsDecrement() && availableStock != nil {
		if -m.QuantityChange > *availableStock {
			result.AddError(fmt.Sprintf(
				"insufficient stock for product %s: removing %d with %d available",
				m.ProductID, -m.QuantityChange, *availableStock,
			))
		}
	}

	return result
}

// Compensate builds the movement that algebraically cancels original: same
// product, location and batch, negated quantity. Reason defaults to
// ADJUSTMENT when empty. This is the only sanctioned correction path.
func Compensate(original *model.StockMovement, compensatingID, performedBy string, reason model.MovementReason, referenceID *string, createdAt time.Time) (*model.StockMovement, error) {
	if original == nil {
		return nil, fmt.Errorf("%w: original movement is required", model.ErrInvalidArgument)
	}
	if compensatingID == "" || performedBy == "" {
		return nil, fmt.Errorf("%w: compensating id and performed_by are required", model.ErrInvalidArgument)
	}
	if reason == "" {
		reason = model.ReasonAdjustment
	}
	if !reason.Valid() {
		return nil, fmt.Errorf("%w: unknown movement reason %q", model.ErrInvalidArgument, reason)
	}

	ref := referenceID
	if ref == nil {
		// Link back to the corrected movement so the pair stays traceable.
		id := original.ID
		ref = &id
	}

	return &model.StockMovement{
		ID:             compensatingID,
		ProductID:      original.ProductID,
		QuantityChange: -original.QuantityChange,
		Reason:         reason,
		PerformedBy:    performedBy,
		LocationID:     original.LocationID,
		BatchID:        original.BatchID,
		ReferenceID:    ref,
		Notes:          fmt.Sprintf("compensates movement %s", original.ID),
		CreatedAt:      createdAt,
	}, nil
}

// DeleteGuard always fails: movements are append-only. Repositories call it
// defensively before any destructive path could reach the ledger table.
func DeleteGuard(m *model.StockMovement) *model.ValidationResult {
	result := model.NewValidationResult()
	id := "<nil>"
	if m != nil {
		id = m.ID
	}
	result.AddError(fmt.Sprintf("movement %s cannot be deleted: %s", id, model.ErrMovementImmutable))
	return result
}

package dto

import "github.com/avolut/retail-stock-service/internal/model"

type RecordMovementInput struct {
	ProductID      string
	QuantityChange int64
	Reason         model.MovementReason
	PerformedBy    string
	LocationID     string
	BatchID        *string
	ReferenceID    *string
	Notes          string
}

type CompensateInput struct {
	OriginalMovementID string
	PerformedBy        string
	Reason             model.MovementReason // defaults to ADJUSTMENT
	ReferenceID        *string
}

type TransferInput struct {
	ProductID      string
	Quantity       int64
	SourceLocation string
	TargetLocation string
	PerformedBy    string
	Notes          string
}

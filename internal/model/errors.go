package model

import "errors"

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotStockTracked   = errors.New("product is not stock tracked")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrConflict          = errors.New("conflict")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidMovement   = errors.New("invalid stock movement")
	// ErrMovementImmutable guards the persistence boundary: movements are
	// append-only and are corrected by compensation, never by update/delete.
	ErrMovementImmutable = errors.New("stock movements are append-only")
	ErrNotFound          = errors.New("not found")
)

package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovementFilters_Offset(t *testing.T) {
	f := &MovementFilters{Page: 3, PageSize: 20}
	assert.Equal(t, 40, f.Offset())

	f.Page = 1
	assert.Equal(t, 0, f.Offset())

	// Unset or nonsense pages clamp to the first page instead of producing
	// a negative offset.
	f.Page = 0
	assert.Equal(t, 0, f.Offset())
	f.Page = -2
	assert.Equal(t, 0, f.Offset())
}

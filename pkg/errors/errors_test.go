package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Clone(ErrNotFound, "vehicle not found"))

	got := FromError(wrapped)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "vehicle not found", got.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(sql.ErrConnDone)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.True(t, errors.Is(got, sql.ErrConnDone))
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "plate is required")
	assert.Equal(t, "plate is required", clone.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
}

func TestWithDetails(t *testing.T) {
	err := WithDetails(ErrBusinessRule, map[string]interface{}{"current_status": "En proceso"})
	assert.Equal(t, "En proceso", err.Details["current_status"])
	assert.Nil(t, ErrBusinessRule.Details)
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("service: %w", Clone(ErrNotFound, "repair not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

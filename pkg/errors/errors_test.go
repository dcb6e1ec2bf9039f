package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{InvalidState("nope"), http.StatusBadRequest},
		{Duplicate("twice", nil), http.StatusBadRequest},
		{Unauthenticated("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("booking", nil), http.StatusNotFound},
		{Internal(sql.ErrConnDone), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.StatusCode(), tt.err.Kind.String())
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("failed to get booking: %w", NotFound("booking", sql.ErrNoRows))

	assert.True(t, IsNotFound(err))
	assert.False(t, IsDuplicate(err))
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Equal(t, "booking not found: sql: no rows in result set", NotFound("booking", sql.ErrNoRows).Error())
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(fmt.Errorf("boom")))
	assert.False(t, IsValidation(nil))
}

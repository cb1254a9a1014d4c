package shared

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("StatusCodes", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, NewValidationError("servings must be at least %d", 1).StatusCode())
		assert.Equal(t, http.StatusNotFound, NewNotFoundError("no plan").StatusCode())
		assert.Equal(t, http.StatusBadGateway, NewUpstreamError("tmdb", errors.New("boom")).StatusCode())
		assert.Equal(t, http.StatusInternalServerError, AsAppError(errors.New("x")).StatusCode())
	})

	t.Run("WrappedValidation", func(t *testing.T) {
		err := fmt.Errorf("plan: %w", NewValidationError("age out of range"))
		assert.True(t, IsValidation(err))
		assert.Equal(t, CodeValidation, AsAppError(err).Code)
		assert.False(t, IsValidation(errors.New("plain")))
	})

	t.Run("UnwrapsCause", func(t *testing.T) {
		cause := errors.New("timeout")
		err := NewUpstreamError("spoonacular", cause)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "spoonacular request failed")
	})
}

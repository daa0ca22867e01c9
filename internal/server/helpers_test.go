package server

import (
	"errors"
	"testing"

	"koinonia/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", models.NewValidationError("bad"), fiber.StatusBadRequest},
		{"invalid operation", models.NewInvalidOperationError("no"), fiber.StatusBadRequest},
		{"not found", models.NewNotFoundError("Content", 1), fiber.StatusNotFound},
		{"ownership", models.NewUnauthorizedError("not yours"), fiber.StatusForbidden},
		{"conflict", models.NewConflictError("taken"), fiber.StatusConflict},
		{"internal", models.NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
		{"plain error", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}

package handlers

import (
	"errors"

	"github.com/escrowdesk/backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

// statusForError maps the service error kinds onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrInvalidStatus):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrConflictingState):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

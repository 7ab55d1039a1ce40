package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrNotFound is returned when an entity id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the principal lacks ownership or role for the action.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned when a state precondition is violated.
	ErrConflict = errors.New("conflict")
	// ErrInvalidTransition is returned when a task status change is not permitted from the current state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrValidation is returned for missing or malformed required fields.
	ErrValidation = errors.New("validation error")
	// ErrUnavailable is returned when the store keeps failing after retries.
	ErrUnavailable = errors.New("unavailable")
)

// NotFound wraps ErrNotFound with a caller-facing message.
func NotFound(msg string) error { return fmt.Errorf("%w: %s", ErrNotFound, msg) }

// Forbidden wraps ErrForbidden with a caller-facing message.
func Forbidden(msg string) error { return fmt.Errorf("%w: %s", ErrForbidden, msg) }

// Conflict wraps ErrConflict with a caller-facing message.
func Conflict(msg string) error { return fmt.Errorf("%w: %s", ErrConflict, msg) }

// InvalidTransition wraps ErrInvalidTransition with a caller-facing message.
func InvalidTransition(msg string) error { return fmt.Errorf("%w: %s", ErrInvalidTransition, msg) }

// Validation wraps ErrValidation with a caller-facing message.
func Validation(msg string) error { return fmt.Errorf("%w: %s", ErrValidation, msg) }

// Code returns the stable error code surfaced to callers.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrInvalidTransition):
		return "INVALID_TRANSITION"
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}

// Status maps a domain error to its HTTP status.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, ErrInvalidTransition):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// Respond writes the standard error body for a domain error.
func Respond(c *fiber.Ctx, err error) error {
	return c.Status(Status(err)).JSON(fiber.Map{
		"success": false,
		"code":    Code(err),
		"message": err.Error(),
	})
}

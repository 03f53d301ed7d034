// apperrors defines the error taxonomy shared by services and handlers.
// Services return these sentinels (possibly wrapped with %w); handlers map
// them to HTTP status codes with StatusCode.
package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	// Authentication / authorization
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenMalformed  = errors.New("token malformed")
	ErrBadSignature    = errors.New("token signature invalid")
	ErrForbidden       = errors.New("forbidden")

	// Lookups
	ErrNotFound = errors.New("resource not found")

	// Registration validation: terminal, never retried
	ErrInvalidTeamName     = errors.New("team name must be at least 3 characters")
	ErrInsufficientPlayers = errors.New("team must have at least 3 players")
	ErrRegistrationClosed  = errors.New("registration is closed for this tournament")
	ErrDuplicateTeamName   = errors.New("team name already registered in this tournament")
	ErrTournamentFull      = errors.New("tournament has reached its team limit")
	ErrCannotRemoveCaptain = errors.New("captain cannot be removed from the roster")

	// State machine
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// Misc validation
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidRole        = errors.New("unknown role")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Transient storage failure, the only class callers may retry
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// StatusCode maps a service error to its HTTP status. Unknown errors fall
// through to 500 so handlers never leak internal details by accident.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenMalformed),
		errors.Is(err, ErrBadSignature),
		errors.Is(err, ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrTournamentFull):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrDuplicateTeamName),
		errors.Is(err, ErrInvalidStateTransition),
		errors.Is(err, ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, ErrInvalidTeamName),
		errors.Is(err, ErrInsufficientPlayers),
		errors.Is(err, ErrRegistrationClosed),
		errors.Is(err, ErrCannotRemoveCaptain),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidRole):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrStorageUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

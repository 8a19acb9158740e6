package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Canonical failure kinds shared by the transaction core. Services wrap
// these with context via fmt.Errorf("...: %w", ...) and handlers match
// them with errors.Is before mapping to an HTTP status.
var (
	ErrValidation                = errors.New("validation failed")
	ErrNotFound                  = errors.New("not found")
	ErrNotAuthorized             = errors.New("not authorized")
	ErrProductUnavailable        = errors.New("product unavailable")
	ErrInsufficientStock         = errors.New("insufficient stock")
	ErrGatewayUnavailable        = errors.New("payment gateway not configured")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	ErrEscrowNotFunded           = errors.New("commission payment not completed")
	ErrAlreadyPaid               = errors.New("already paid")
	ErrInvalidProductType        = errors.New("invalid product type")
	ErrRevoked                   = errors.New("download access revoked")
	ErrExpired                   = errors.New("download access expired")
	ErrLimitReached              = errors.New("download limit reached")
)

// Status maps a core error onto the HTTP status the routing layer should
// return. GatewayUnavailable is a configuration problem, not a server bug,
// so it surfaces as 503 rather than 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidProductType):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.Is(err, ErrProductUnavailable), errors.Is(err, ErrInsufficientStock):
		return fiber.StatusConflict
	case errors.Is(err, ErrGatewayUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, ErrPaymentVerificationFailed):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrAlreadyPaid):
		return fiber.StatusConflict
	case errors.Is(err, ErrEscrowNotFunded):
		return fiber.StatusPaymentRequired
	case errors.Is(err, ErrRevoked), errors.Is(err, ErrExpired), errors.Is(err, ErrLimitReached):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

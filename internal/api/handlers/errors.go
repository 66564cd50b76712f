package handlers

import (
	"errors"

	"purchases-api/domain"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps service errors onto HTTP status codes. Anything unknown is
// treated as a storage failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrTelegramHashMismatch), errors.Is(err, domain.ErrTelegramAuthOutdated),
		errors.Is(err, domain.ErrTelegramAuthFuture):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrSessionForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrFeatureDisabled):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrDeleteAllNotConfirmed), errors.Is(err, domain.ErrStaleSnapshot):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInvalidSnapshot):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

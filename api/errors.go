package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/n3on404/loauj-local-node-sub001/internal/domain"
)

// statusFor maps the engine's caller-visible outcomes to HTTP codes.
// Everything here is recoverable; only store loss is a 503.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrVehicleNotFound),
		errors.Is(err, domain.ErrQueueEntryNotFound),
		errors.Is(err, domain.ErrRouteNotFound),
		errors.Is(err, domain.ErrInvalidVerificationCode):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyQueued),
		errors.Is(err, domain.ErrHasActiveBookings),
		errors.Is(err, domain.ErrInsufficientSeats),
		errors.Is(err, domain.ErrInvalidStatusChange):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotAuthorized),
		errors.Is(err, domain.ErrNotEligible):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNoVehiclesAvailable),
		errors.Is(err, domain.ErrSeatLimitExceeded),
		domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsStoreUnavailable(err):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func abortWith(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

package domain

import (
	"errors"
	"fmt"
)

// Caller-visible outcomes. Every one of these is recoverable: operations
// return them, handlers map them to responses, nothing panics.
var (
	ErrAlreadyQueued           = errors.New("vehicle already has an active queue entry")
	ErrNotAuthorized           = errors.New("vehicle is not authorized for this destination")
	ErrNotEligible             = errors.New("vehicle is not eligible to queue")
	ErrHasActiveBookings       = errors.New("queue entry has paid or pending bookings")
	ErrInsufficientSeats       = errors.New("not enough available seats")
	ErrNoVehiclesAvailable     = errors.New("no vehicles queued for destination")
	ErrInvalidVerificationCode = errors.New("verification code not found")
	ErrVehicleNotFound         = errors.New("vehicle not found")
	ErrQueueEntryNotFound      = errors.New("queue entry not found")
	ErrRouteNotFound           = errors.New("route not found")
	ErrInvalidStatusChange     = errors.New("queue status can only advance")
	ErrSeatLimitExceeded       = errors.New("seats requested exceed the per-booking limit")

	// ErrTransferRunning is a soft signal, not a failure: a transfer
	// trigger arriving while a run is in flight is a deliberate no-op.
	ErrTransferRunning = errors.New("overnight transfer already running")
)

type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// StoreError wraps a failure of the backing store itself (lost connection,
// failed commit). The transaction it interrupted rolled back, so no partial
// state survives; callers see it as a generic unavailability.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error { return e.Err }

func IsStoreUnavailable(err error) bool {
	var target StoreError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

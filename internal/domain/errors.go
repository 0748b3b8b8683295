package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrResourceUnavailable  = errors.New("resource is not bookable")
	ErrSelfBookingForbidden = errors.New("requester owns this resource")
	ErrCapacityExceeded     = errors.New("not enough seats remaining")
	ErrOverlapConflict      = errors.New("time range overlaps an active reservation")
	ErrUnauthorized         = errors.New("actor is not allowed to perform this action")
	ErrPaymentWindowExpired = errors.New("payment window has expired")
	ErrAlreadyFinalized     = errors.New("reservation has already been finalized")
	ErrUseNotEnded          = errors.New("use period has not ended yet")
)

// InvalidTransitionError names the attempted lifecycle edge.
type InvalidTransitionError struct {
	From ReservationState
	To   ReservationState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid reservation transition: %s -> %s", e.From, e.To)
}

// NewInvalidTransition builds the error for an illegal from -> to edge.
func NewInvalidTransition(from, to ReservationState) error {
	return &InvalidTransitionError{From: from, To: to}
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}

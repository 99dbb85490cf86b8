package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecordNotFound       = errors.New("record not found")
	ErrEditConflict         = errors.New("edit conflict")
	ErrCustomerInactive     = errors.New("customer is not active")
	ErrCustomerExists       = errors.New("customer already exists")
	ErrShowtimeNotBookable  = errors.New("showtime is not open for booking")
	ErrInsufficientCapacity = errors.New("not enough available seats for this showtime")
	ErrAlreadyCancelled     = errors.New("reservation is already cancelled")
	ErrInvalidState         = errors.New("reservation state does not permit this operation")
	ErrNotAuthorized        = errors.New("employee role is not authorized for this operation")
	ErrInvalidReason        = errors.New("cancellation reason must be between 10 and 200 characters")
	ErrUnknownFareCategory  = errors.New("unknown fare category")
	ErrInvalidSeatCount     = errors.New("a reservation must include between 1 and 3 seats")
	ErrDuplicateSeats       = errors.New("the same seat cannot be selected more than once")
)

// SeatsNotFoundError reports seat selections that could not be resolved to an
// active seat in the showtime's room.
type SeatsNotFoundError struct {
	Locations []string
}

func (e *SeatsNotFoundError) Error() string {
	return fmt.Sprintf("seats not found in room: %s", strings.Join(e.Locations, ", "))
}

// SeatsUnavailableError lists every conflicting seat, not just the first one,
// so the caller can show the full set to the customer.
type SeatsUnavailableError struct {
	Locations []string
}

func (e *SeatsUnavailableError) Error() string {
	// Locations may be empty when the conflict is detected by the storage
	// layer rather than the availability check.
	if len(e.Locations) == 0 {
		return "seats not available"
	}
	return fmt.Sprintf("seats not available: %s", strings.Join(e.Locations, ", "))
}

// FareMismatchError signals a seat booked with a fare category its seat
// category does not allow, e.g. an accessible seat with an adult fare.
type FareMismatchError struct {
	Location string
	SeatType SeatType
	Fare     FareCategory
}

func (e *FareMismatchError) Error() string {
	return fmt.Sprintf("seat %s is a %s seat and cannot be booked with the %s fare", e.Location, e.SeatType, e.Fare)
}

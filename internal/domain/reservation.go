package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// HoldTTL is how long a pending reservation keeps its seats before the
// sweeper releases them.
const HoldTTL = 15 * time.Minute

type ReservationState string

const (
	ReservationPending   ReservationState = "Pending"
	ReservationConfirmed ReservationState = "Confirmed"
	ReservationCancelled ReservationState = "Cancelled"
	ReservationExpired   ReservationState = "Expired"
)

type Reservation struct {
	ID           int
	Code         string
	ShowtimeID   int
	CustomerID   int
	RegisteredBy int
	State        ReservationState
	TotalPrice   decimal.Decimal
	CreatedAt    time.Time
	ExpiresAt    time.Time
	Version      int

	CancelledBy     *int
	CancelledAt     *time.Time
	CancelReason    string
	ReservationSeat []ReservationSeat
}

// Expired reports whether a pending hold has outlived its TTL.
func (r Reservation) Expired(now time.Time) bool {
	return r.State == ReservationPending && now.After(r.ExpiresAt)
}

type ReservationSeatStatus string

const (
	ReservationSeatPending   ReservationSeatStatus = "Pending"
	ReservationSeatOccupied  ReservationSeatStatus = "Occupied"
	ReservationSeatCancelled ReservationSeatStatus = "Cancelled"
)

// ReservationSeat links one seat to a reservation so every seat in a
// multi-seat booking carries its own fare category and unit price.
type ReservationSeat struct {
	ReservationID int
	ShowtimeID    int
	SeatID        int
	FareID        int
	UnitPrice     decimal.Decimal
	Status        ReservationSeatStatus

	// Populated on reads that join the seat ledger.
	Location string
	SeatType SeatType
}

// ReservationRepository persists reservations and their seat links. Mutating
// methods participate in the transaction carried by ctx.
type ReservationRepository interface {
	// Create persists the reservation and its seat links, assigning the id
	// and the human-readable code derived from it (RES-00042).
	Create(ctx context.Context, reservation *Reservation) error
	GetById(ctx context.Context, reservationID int) (*Reservation, error)
	GetByCode(ctx context.Context, code string) (*Reservation, error)
	// UpdateState transitions the reservation guarded by its version column
	// and cascades the link status; returns ErrEditConflict when the version
	// moved underneath us.
	UpdateState(ctx context.Context, reservation *Reservation, linkStatus ReservationSeatStatus) error
	SeatIDs(ctx context.Context, reservationID int) ([]int, error)
	// ExpiredPending returns ids of pending reservations whose expiration
	// deadline passed before the given instant.
	ExpiredPending(ctx context.Context, now time.Time, limit int) ([]int, error)
}

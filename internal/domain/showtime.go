package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ShowtimeStatus string

const (
	ShowtimeScheduled ShowtimeStatus = "Scheduled"
	ShowtimeCancelled ShowtimeStatus = "Cancelled"
	ShowtimeFinished  ShowtimeStatus = "Finished"
)

type Showtime struct {
	ID             int
	MovieID        int
	RoomID         int
	StartTime      time.Time
	BasePrice      decimal.Decimal
	Status         ShowtimeStatus
	AvailableSeats int
	CreatedBy      int
}

// Bookable reports whether new reservations may target this showtime.
func (s Showtime) Bookable(now time.Time) bool {
	return s.Status == ShowtimeScheduled && s.StartTime.After(now)
}

// Listing is a now-showing catalog entry.
type Listing struct {
	ShowtimeID     int
	MovieTitle     string
	RoomName       string
	StartTime      time.Time
	BasePrice      decimal.Decimal
	AvailableSeats int
}

type Room struct {
	ID       int
	Name     string
	Capacity int
}

// ShowtimeRepository also serves as the showtime capacity tracker.
// AvailableSeatsForUpdate takes the write-exclusive lock on the showtime row
// and must only be called inside a transaction; the lock is held until the
// transaction ends.
type ShowtimeRepository interface {
	GetById(ctx context.Context, showtimeID int) (*Showtime, error)
	GetListings(ctx context.Context, now time.Time) ([]Listing, error)
	Create(ctx context.Context, showtime *Showtime) error
	HasOverlap(ctx context.Context, roomID int, start, end time.Time) (bool, error)
	AvailableSeatsForUpdate(ctx context.Context, showtimeID int) (int, error)
	AdjustAvailableSeats(ctx context.Context, showtimeID, delta int) error
}

type RoomRepository interface {
	GetById(ctx context.Context, roomID int) (*Room, error)
}

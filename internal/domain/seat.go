package domain

import (
	"context"
	"fmt"
)

type SeatType string

const (
	SeatTypeStandard   SeatType = "Standard"
	SeatTypeAccessible SeatType = "Accessible"
	SeatTypeCompanion  SeatType = "Companion"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "Available"
	SeatHeld      SeatStatus = "Held"
	SeatOccupied  SeatStatus = "Occupied"
)

type Seat struct {
	ID     int
	RoomID int
	Row    string
	Number int
	Type   SeatType
	Status SeatStatus
	Active bool
}

// Location renders the human-readable seat position, e.g. "B7".
func (s Seat) Location() string {
	return fmt.Sprintf("%s%d", s.Row, s.Number)
}

// SeatLocation identifies a seat within a room by its printed position.
type SeatLocation struct {
	Row    string
	Number int
}

func (l SeatLocation) String() string {
	return fmt.Sprintf("%s%d", l.Row, l.Number)
}

// SeatRepository is the seat ledger. The mutating methods must be called
// inside a transaction started by TxManager; group transitions are
// all-or-nothing.
type SeatRepository interface {
	GetByRoomAndLocations(ctx context.Context, roomID int, locations []SeatLocation) ([]Seat, error)
	GetByIDs(ctx context.Context, seatIDs []int) ([]Seat, error)
	GetByShowtime(ctx context.Context, showtimeID int) ([]Seat, error)
	UpdateStatus(ctx context.Context, seatIDs []int, status SeatStatus) error
}

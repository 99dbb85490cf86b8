package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Ticket is the receipt produced when a reservation is paid for, either by
// explicit confirmation or by a direct counter sale.
type Ticket struct {
	ID            int
	Code          string
	ReservationID int
	TotalPrice    decimal.Decimal
	PaymentMethod string
	SoldAt        time.Time

	// Denormalized display fields.
	ReservationCode string
	CustomerName    string
	CustomerEmail   string
	MovieTitle      string
	RoomName        string
	ShowtimeStart   time.Time
	SeatLocations   []string
}

type TicketRepository interface {
	Create(ctx context.Context, ticket *Ticket) error
	GetByReservationId(ctx context.Context, reservationID int) (*Ticket, error)
}

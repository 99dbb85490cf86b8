package app

import (
	"errors"
	"time"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/shopspring/decimal"
)

var errInvalidReservationCode = errors.New("invalid reservation code")

type TicketResponse struct {
	Code            string          `json:"code"`
	ReservationCode string          `json:"reservationCode"`
	CustomerName    string          `json:"customerName"`
	MovieTitle      string          `json:"movieTitle"`
	RoomName        string          `json:"roomName"`
	ShowtimeStart   time.Time       `json:"showtimeStart"`
	Seats           []string        `json:"seats"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	PaymentMethod   string          `json:"paymentMethod"`
	SoldAt          time.Time       `json:"soldAt"`
}

func toTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		Code:            ticket.Code,
		ReservationCode: ticket.ReservationCode,
		CustomerName:    ticket.CustomerName,
		MovieTitle:      ticket.MovieTitle,
		RoomName:        ticket.RoomName,
		ShowtimeStart:   ticket.ShowtimeStart,
		Seats:           ticket.SeatLocations,
		TotalPrice:      ticket.TotalPrice,
		PaymentMethod:   ticket.PaymentMethod,
		SoldAt:          ticket.SoldAt,
	}
}

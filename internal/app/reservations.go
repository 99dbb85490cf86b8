package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/cinestar/cinema-ticketing/internal/booking"
	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type SeatSelectionRequest struct {
	Row    string `json:"row" validate:"required,seat_row"`
	Number int    `json:"number" validate:"required,gt=0"`
	Fare   string `json:"fare" validate:"required,fare"`
}

type CreateReservationRequest struct {
	CustomerId int `json:"customerId" validate:"required,gt=0"`
	ShowtimeId int `json:"showtimeId" validate:"required,gt=0"`
	EmployeeId int `json:"employeeId" validate:"omitempty,gt=0"`
	// unique compares whole selections; the booking engine still rejects the
	// same seat requested twice with different fares.
	Seats []SeatSelectionRequest `json:"seats" validate:"required,min=1,max=3,unique,dive"`
}

type ReservationSeatResponse struct {
	Location  string          `json:"location"`
	SeatType  string          `json:"seatType"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type ReservationResponse struct {
	Code       string                    `json:"code"`
	State      string                    `json:"state"`
	ShowtimeId int                       `json:"showtimeId"`
	TotalPrice decimal.Decimal           `json:"totalPrice"`
	CreatedAt  time.Time                 `json:"createdAt"`
	ExpiresAt  time.Time                 `json:"expiresAt"`
	Seats      []ReservationSeatResponse `json:"seats"`
}

func (app *Application) CreateReservationHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	input := booking.CreateReservationInput{
		CustomerID: req.CustomerId,
		ShowtimeID: req.ShowtimeId,
		EmployeeID: req.EmployeeId,
	}
	for _, seat := range req.Seats {
		input.Seats = append(input.Seats, booking.SeatSelection{
			Row:    seat.Row,
			Number: seat.Number,
			Fare:   domain.FareCategory(seat.Fare),
		})
	}

	reservation, err := app.engine.CreateReservation(r.Context(), input)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toReservationResponse(reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetReservationByCodeHandler(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		app.badRequestResponse(w, r, errInvalidReservationCode)
		return
	}

	reservation, err := app.engine.GetReservationByCode(r.Context(), code)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toReservationResponse(reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type ConfirmReservationRequest struct {
	EmployeeId int `json:"employeeId" validate:"required,gt=0"`
}

func (app *Application) ConfirmReservationHandler(w http.ResponseWriter, r *http.Request) {
	reservationId, err := app.readIDParam(r, "reservationId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var req ConfirmReservationRequest

	err = app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	ticket, err := app.engine.ConfirmReservation(r.Context(), reservationId, req.EmployeeId)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	app.sendTicketReceipt(r, ticket)

	err = app.writeJSON(w, http.StatusOK, toTicketResponse(ticket), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type CancelReservationRequest struct {
	EmployeeId int    `json:"employeeId" validate:"required,gt=0"`
	Reason     string `json:"reason" validate:"required"`
}

func (app *Application) CancelReservationHandler(w http.ResponseWriter, r *http.Request) {
	reservationId, err := app.readIDParam(r, "reservationId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var req CancelReservationRequest

	err = app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	reservation, err := app.engine.CancelReservation(r.Context(), reservationId, req.EmployeeId, req.Reason)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toReservationResponse(reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// sendTicketReceipt mails the receipt off the request path. Walk-up customers
// registered at the counter carry a placeholder address and are skipped.
func (app *Application) sendTicketReceipt(r *http.Request, ticket *domain.Ticket) {
	if strings.HasSuffix(ticket.CustomerEmail, "@walkup.local") {
		return
	}

	logger := app.contextGetLogger(r)

	app.background(func() {
		data := map[string]any{
			"CustomerName":    ticket.CustomerName,
			"TicketCode":      ticket.Code,
			"ReservationCode": ticket.ReservationCode,
			"MovieTitle":      ticket.MovieTitle,
			"RoomName":        ticket.RoomName,
			"ShowtimeStart":   ticket.ShowtimeStart.Format(time.RFC1123),
			"Seats":           strings.Join(ticket.SeatLocations, ", "),
			"TotalPrice":      ticket.TotalPrice.StringFixed(2),
		}

		err := app.mailer.Send(ticket.CustomerEmail, "ticket_receipt.tmpl", data)
		if err != nil {
			logger.Error("failed to send ticket receipt", "ticket", ticket.Code, "error", err)
		}
	})
}

func toReservationResponse(reservation *domain.Reservation) ReservationResponse {
	resp := ReservationResponse{
		Code:       reservation.Code,
		State:      string(reservation.State),
		ShowtimeId: reservation.ShowtimeID,
		TotalPrice: reservation.TotalPrice,
		CreatedAt:  reservation.CreatedAt,
		ExpiresAt:  reservation.ExpiresAt,
	}

	for _, link := range reservation.ReservationSeat {
		resp.Seats = append(resp.Seats, ReservationSeatResponse{
			Location:  link.Location,
			SeatType:  string(link.SeatType),
			UnitPrice: link.UnitPrice,
		})
	}

	return resp
}

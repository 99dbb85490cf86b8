package app

import (
	"net/http"

	"github.com/cinestar/cinema-ticketing/internal/booking"
)

type DirectSaleRequest struct {
	FirstName  string `json:"firstName" validate:"required,max=50"`
	LastName   string `json:"lastName" validate:"required,max=50"`
	Phone      string `json:"phone" validate:"required,phone"`
	ShowtimeId int    `json:"showtimeId" validate:"required,gt=0"`
	EmployeeId int    `json:"employeeId" validate:"required,gt=0"`
	SeatIds    []int  `json:"seatIds" validate:"required,min=1,unique,dive,gt=0"`
}

// DirectSaleHandler sells seats over the counter in one step: the customer is
// matched or created by phone number and the ticket is issued immediately.
func (app *Application) DirectSaleHandler(w http.ResponseWriter, r *http.Request) {
	var req DirectSaleRequest

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

	ticket, err := app.engine.DirectSale(r.Context(), booking.DirectSaleInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		ShowtimeID: req.ShowtimeId,
		EmployeeID: req.EmployeeId,
		SeatIDs:    req.SeatIds,
	})
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	app.sendTicketReceipt(r, ticket)

	err = app.writeJSON(w, http.StatusCreated, toTicketResponse(ticket), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/cinestar/cinema-ticketing/internal/domain"
)

var errMissingEmailParam = errors.New("email query parameter is required")

type RegisterCustomerRequest struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
}

type CustomerResponse struct {
	Id        int       `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

func (app *Application) RegisterCustomerHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterCustomerRequest

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

	customer := &domain.Customer{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Active:    true,
	}

	err = app.customerRepo.Create(r.Context(), customer)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toCustomerResponse(customer), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// LookupCustomerHandler finds a customer by email, so the counter can attach
// returning customers to new reservations.
func (app *Application) LookupCustomerHandler(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		app.badRequestResponse(w, r, errMissingEmailParam)
		return
	}

	customer, err := app.customerRepo.GetByEmail(r.Context(), email)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toCustomerResponse(customer), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toCustomerResponse(customer *domain.Customer) CustomerResponse {
	return CustomerResponse{
		Id:        customer.ID,
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
		Email:     customer.Email,
		Phone:     customer.Phone,
		Active:    customer.Active,
		CreatedAt: customer.CreatedAt,
	}
}

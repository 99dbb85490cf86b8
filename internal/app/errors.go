package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	appvalidator "github.com/cinestar/cinema-ticketing/internal/validator"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
}

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Error(err.Error(), "method", method, "uri", uri)
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

// ErrInternalServer is the catch-all message returned for unexpected failures.
const ErrInternalServer = "The server encountered a problem and could not process your request"

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "The requested resource not found"
	app.errorResponse(w, r, http.StatusNotFound, message)
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.errorResponse(w, r, http.StatusConflict, message)
}

func (app *Application) forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.errorResponse(w, r, http.StatusForbidden, message)
}

func (app *Application) unprocessableResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, message)
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		app.serverErrorResponse(w, r, err)
		return
	}

	fieldErrors := make([]ValidationError, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		fieldErrors = append(fieldErrors, ValidationError{
			Field: fieldError.Field(),
			Issue: appvalidator.ValidationMessage(fieldError),
		})
	}

	resp := ValidationErrorResponse{
		Message:          "Validation failed",
		ValidationErrors: fieldErrors,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
	}

	writeErr := app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if writeErr != nil {
		app.logError(r, writeErr)
		w.WriteHeader(500)
	}
}

// bookingErrorResponse maps booking and catalog failures onto HTTP statuses.
// Falls back to a 500 for anything it does not recognize.
func (app *Application) bookingErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var (
		seatsNotFound    *domain.SeatsNotFoundError
		seatsUnavailable *domain.SeatsUnavailableError
		fareMismatch     *domain.FareMismatchError
	)

	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponse(w, r)

	case errors.As(err, &seatsNotFound):
		app.errorResponse(w, r, http.StatusNotFound, seatsNotFound.Error())

	case errors.As(err, &seatsUnavailable):
		app.conflictResponse(w, r, seatsUnavailable.Error())

	case errors.As(err, &fareMismatch):
		app.unprocessableResponse(w, r, fareMismatch.Error())

	case errors.Is(err, domain.ErrInsufficientCapacity),
		errors.Is(err, domain.ErrShowtimeNotBookable),
		errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrCustomerExists),
		errors.Is(err, domain.ErrEditConflict):
		app.conflictResponse(w, r, err.Error())

	case errors.Is(err, domain.ErrNotAuthorized):
		app.forbiddenResponse(w, r, err.Error())

	case errors.Is(err, domain.ErrInvalidSeatCount),
		errors.Is(err, domain.ErrDuplicateSeats),
		errors.Is(err, domain.ErrInvalidReason),
		errors.Is(err, domain.ErrCustomerInactive),
		errors.Is(err, domain.ErrUnknownFareCategory):
		app.unprocessableResponse(w, r, err.Error())

	default:
		app.serverErrorResponse(w, r, err)
	}
}

package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cinestar/cinema-ticketing/internal/booking"
	"github.com/cinestar/cinema-ticketing/internal/mailer"
	"github.com/cinestar/cinema-ticketing/internal/mocks"
	"github.com/cinestar/cinema-ticketing/internal/validator"
)

var testNow = time.Date(2026, time.March, 14, 18, 0, 0, 0, time.UTC)

// testMocks bundles every repository double wired into a test application.
type testMocks struct {
	showtimeRepo    *mocks.MockShowtimeRepo
	roomRepo        *mocks.MockRoomRepo
	seatRepo        *mocks.MockSeatRepo
	reservationRepo *mocks.MockReservationRepo
	ticketRepo      *mocks.MockTicketRepo
	customerRepo    *mocks.MockCustomerRepo
	employeeRepo    *mocks.MockEmployeeRepo
	fareRepo        *mocks.MockFareRepo
	movieRepo       *mocks.MockMovieRepo
	mailer          *mailer.MockMailer
}

func newTestApplication() (*Application, *testMocks) {
	m := &testMocks{
		showtimeRepo:    new(mocks.MockShowtimeRepo),
		roomRepo:        new(mocks.MockRoomRepo),
		seatRepo:        new(mocks.MockSeatRepo),
		reservationRepo: new(mocks.MockReservationRepo),
		ticketRepo:      new(mocks.MockTicketRepo),
		customerRepo:    new(mocks.MockCustomerRepo),
		employeeRepo:    new(mocks.MockEmployeeRepo),
		fareRepo:        new(mocks.MockFareRepo),
		movieRepo:       new(mocks.MockMovieRepo),
		mailer:          mailer.NewMockMailer(),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	engine := booking.NewEngine(booking.EngineOptions{
		Logger:       logger,
		Tx:           mocks.NoopTxManager{},
		Showtimes:    m.showtimeRepo,
		Seats:        m.seatRepo,
		Reservations: m.reservationRepo,
		Tickets:      m.ticketRepo,
		Customers:    m.customerRepo,
		Employees:    m.employeeRepo,
		Pricing:      booking.NewPricing(m.fareRepo),
		Now:          func() time.Time { return testNow },
	})

	app := &Application{
		config:       Config{Env: "test"},
		logger:       logger,
		validator:    validator.NewValidator(),
		mailer:       m.mailer,
		engine:       engine,
		movieRepo:    m.movieRepo,
		showtimeRepo: m.showtimeRepo,
		roomRepo:     m.roomRepo,
		customerRepo: m.customerRepo,
		employeeRepo: m.employeeRepo,
		fareRepo:     m.fareRepo,
	}

	return app, m
}

func executeRequest(t *testing.T, app *Application, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	app.Routes().ServeHTTP(w, r)

	return w
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantErrMessage string) {
	t.Helper()

	if wantStatus >= 200 && wantStatus < 300 {
		return
	}

	switch wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		if wantErrMessage == "" {
			return
		}

		if validationResp.Message == wantErrMessage {
			return
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", wantErrMessage)
		}

	default:
		var errorResp ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if wantErrMessage != "" && errorResp.Message != wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, wantErrMessage)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}

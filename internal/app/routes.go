package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware("cinema-ticketing-api", otelchi.WithChiRoutes(r)))
	r.Use(app.logRequest)
	r.Use(app.recoverPanic)

	r.Get("/health", app.GetHealth)

	r.Route("/movies", func(r chi.Router) {
		r.Post("/", app.CreateMovieHandler)
		r.Get("/{movieId}", app.GetMovieHandler)
	})

	r.Route("/showtimes", func(r chi.Router) {
		r.Get("/", app.ListShowtimesHandler)
		r.Post("/", app.RegisterShowtimeHandler)
		r.Get("/{showtimeId}/seats", app.GetSeatMapByShowtime)
	})

	r.Route("/customers", func(r chi.Router) {
		r.Post("/", app.RegisterCustomerHandler)
		r.Get("/", app.LookupCustomerHandler)
	})

	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", app.CreateReservationHandler)
		r.Get("/{code}", app.GetReservationByCodeHandler)
		r.Post("/{reservationId}/confirmation", app.ConfirmReservationHandler)
		r.Post("/{reservationId}/cancellation", app.CancelReservationHandler)
	})

	r.Get("/fares", app.ListFaresHandler)

	r.Post("/sales", app.DirectSaleHandler)

	return r
}

package app

import (
	"net/http"
	"time"

	"github.com/cinestar/cinema-ticketing/internal/domain"
)

type CreateMovieRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Genre       string    `json:"genre" validate:"required,max=50"`
	DurationMin int       `json:"durationMin" validate:"required,gt=0"`
	Rating      string    `json:"rating" validate:"required,max=10"`
	Director    string    `json:"director" validate:"required,max=100"`
	Synopsis    string    `json:"synopsis" validate:"required,max=2000"`
	ReleaseDate time.Time `json:"releaseDate" validate:"required"`
	EmployeeId  int       `json:"employeeId" validate:"required,gt=0"`
}

type MovieResponse struct {
	Id          int       `json:"id"`
	Title       string    `json:"title"`
	Genre       string    `json:"genre"`
	DurationMin int       `json:"durationMin"`
	Rating      string    `json:"rating"`
	Director    string    `json:"director"`
	Synopsis    string    `json:"synopsis"`
	ReleaseDate time.Time `json:"releaseDate"`
	Active      bool      `json:"active"`
}

func (app *Application) CreateMovieHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateMovieRequest

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

	movie := &domain.Movie{
		Title:       req.Title,
		Genre:       req.Genre,
		DurationMin: req.DurationMin,
		Rating:      req.Rating,
		Director:    req.Director,
		Synopsis:    req.Synopsis,
		ReleaseDate: req.ReleaseDate,
		Active:      true,
		CreatedBy:   req.EmployeeId,
	}

	err = app.movieRepo.Create(r.Context(), movie)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toMovieResponse(movie), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetMovieHandler(w http.ResponseWriter, r *http.Request) {
	movieId, err := app.readIDParam(r, "movieId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	movie, err := app.movieRepo.GetById(r.Context(), movieId)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toMovieResponse(movie), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toMovieResponse(movie *domain.Movie) MovieResponse {
	return MovieResponse{
		Id:          movie.ID,
		Title:       movie.Title,
		Genre:       movie.Genre,
		DurationMin: movie.DurationMin,
		Rating:      movie.Rating,
		Director:    movie.Director,
		Synopsis:    movie.Synopsis,
		ReleaseDate: movie.ReleaseDate,
		Active:      movie.Active,
	}
}

package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type ListingResponse struct {
	ShowtimeId     int             `json:"showtimeId"`
	MovieTitle     string          `json:"movieTitle"`
	RoomName       string          `json:"roomName"`
	StartTime      time.Time       `json:"startTime"`
	BasePrice      decimal.Decimal `json:"basePrice"`
	AvailableSeats int             `json:"availableSeats"`
}

type ListingsResponse struct {
	Showtimes []ListingResponse `json:"showtimes"`
}

// ListShowtimesHandler returns the now-showing board: scheduled, future
// showtimes that still have seats to sell. The board is the highest-traffic
// read, so it is served from the same short-lived cache as the seat map.
func (app *Application) ListShowtimesHandler(w http.ResponseWriter, r *http.Request) {
	if cached, ok := app.cachedListings(r); ok {
		app.writeJSON(w, http.StatusOK, cached, nil)
		return
	}

	listings, err := app.showtimeRepo.GetListings(r.Context(), time.Now())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := ListingsResponse{Showtimes: make([]ListingResponse, len(listings))}
	for i, listing := range listings {
		resp.Showtimes[i] = ListingResponse{
			ShowtimeId:     listing.ShowtimeID,
			MovieTitle:     listing.MovieTitle,
			RoomName:       listing.RoomName,
			StartTime:      listing.StartTime,
			BasePrice:      listing.BasePrice,
			AvailableSeats: listing.AvailableSeats,
		}
	}

	app.cacheListings(r, resp)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

const listingsCacheKey = "showtime_listings"

func (app *Application) cachedListings(r *http.Request) (ListingsResponse, bool) {
	var resp ListingsResponse

	if app.redis == nil {
		return resp, false
	}

	payload, err := app.redis.Get(r.Context(), listingsCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			app.contextGetLogger(r).Error("listings cache read failed", "error", err)
		}
		return resp, false
	}

	if err := json.Unmarshal(payload, &resp); err != nil {
		return resp, false
	}

	return resp, true
}

func (app *Application) cacheListings(r *http.Request, resp ListingsResponse) {
	if app.redis == nil {
		return
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}

	err = app.redis.Set(r.Context(), listingsCacheKey, payload, seatMapCacheTTL).Err()
	if err != nil {
		app.contextGetLogger(r).Error("listings cache write failed", "error", err)
	}
}

type RegisterShowtimeRequest struct {
	MovieId    int             `json:"movieId" validate:"required,gt=0"`
	RoomId     int             `json:"roomId" validate:"required,gt=0"`
	StartTime  time.Time       `json:"startTime" validate:"required"`
	BasePrice  decimal.Decimal `json:"basePrice" validate:"required"`
	EmployeeId int             `json:"employeeId" validate:"required,gt=0"`
}

type ShowtimeResponse struct {
	Id             int             `json:"id"`
	MovieId        int             `json:"movieId"`
	RoomId         int             `json:"roomId"`
	StartTime      time.Time       `json:"startTime"`
	BasePrice      decimal.Decimal `json:"basePrice"`
	Status         string          `json:"status"`
	AvailableSeats int             `json:"availableSeats"`
}

// minShowtimeLeadTime is how far in the future a new showtime must start, so
// the board is never published with a screening the staff cannot prepare.
const minShowtimeLeadTime = 30 * time.Minute

func (app *Application) RegisterShowtimeHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterShowtimeRequest

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

	if req.StartTime.Before(time.Now().Add(minShowtimeLeadTime)) {
		app.unprocessableResponse(w, r, "startTime must be at least 30 minutes from now")
		return
	}

	if req.BasePrice.IsNegative() {
		app.unprocessableResponse(w, r, "basePrice must not be negative")
		return
	}

	employee, err := app.employeeRepo.GetById(r.Context(), req.EmployeeId)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}
	if !employee.Active {
		app.forbiddenResponse(w, r, domain.ErrNotAuthorized.Error())
		return
	}

	movie, err := app.movieRepo.GetById(r.Context(), req.MovieId)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}
	if !movie.Active {
		app.unprocessableResponse(w, r, "movie is not active")
		return
	}

	room, err := app.roomRepo.GetById(r.Context(), req.RoomId)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	end := req.StartTime.Add(time.Duration(movie.DurationMin) * time.Minute)

	overlaps, err := app.showtimeRepo.HasOverlap(r.Context(), room.ID, req.StartTime, end)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if overlaps {
		app.conflictResponse(w, r, "room already has a showtime in that time window")
		return
	}

	showtime := &domain.Showtime{
		MovieID:        movie.ID,
		RoomID:         room.ID,
		StartTime:      req.StartTime,
		BasePrice:      req.BasePrice,
		Status:         domain.ShowtimeScheduled,
		AvailableSeats: room.Capacity,
		CreatedBy:      req.EmployeeId,
	}

	err = app.showtimeRepo.Create(r.Context(), showtime)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := ShowtimeResponse{
		Id:             showtime.ID,
		MovieId:        showtime.MovieID,
		RoomId:         showtime.RoomID,
		StartTime:      showtime.StartTime,
		BasePrice:      showtime.BasePrice,
		Status:         string(showtime.Status),
		AvailableSeats: showtime.AvailableSeats,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

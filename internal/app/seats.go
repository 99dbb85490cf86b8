package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/redis/go-redis/v9"
)

// seatMapCacheTTL bounds how stale a cached seat map may be. Seat holds are
// written to Postgres, so the cache only has to absorb read bursts.
const seatMapCacheTTL = 5 * time.Second

type SeatResponse struct {
	Id        int    `json:"id"`
	Row       string `json:"row"`
	Number    int    `json:"number"`
	Type      string `json:"type"`
	Available bool   `json:"available"`
}

type SeatRowResponse struct {
	Row   string         `json:"row"`
	Seats []SeatResponse `json:"seats"`
}

type SeatMapResponse struct {
	ShowtimeId int               `json:"showtimeId"`
	SeatRows   []SeatRowResponse `json:"seatRows"`
}

func (app *Application) GetSeatMapByShowtime(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showtimeId, err := app.readIDParam(r, "showtimeId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if cached, ok := app.cachedSeatMap(r, showtimeId); ok {
		app.writeJSON(w, http.StatusOK, cached, nil)
		return
	}

	seats, err := app.engine.ListSeatsForShowtime(r.Context(), showtimeId)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	if len(seats) == 0 {
		logger.Warn("seat map not found for showtime", "showtime_id", showtimeId)
		app.notFoundResponse(w, r)
		return
	}

	resp := toSeatMapResponse(showtimeId, seats)
	app.cacheSeatMap(r, showtimeId, resp)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func seatMapKey(showtimeId int) string {
	return fmt.Sprintf("seat_map:%d", showtimeId)
}

func (app *Application) cachedSeatMap(r *http.Request, showtimeId int) (SeatMapResponse, bool) {
	var resp SeatMapResponse

	if app.redis == nil {
		return resp, false
	}

	payload, err := app.redis.Get(r.Context(), seatMapKey(showtimeId)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			app.contextGetLogger(r).Error("seat map cache read failed", "error", err)
		}
		return resp, false
	}

	if err := json.Unmarshal(payload, &resp); err != nil {
		return resp, false
	}

	return resp, true
}

func (app *Application) cacheSeatMap(r *http.Request, showtimeId int, resp SeatMapResponse) {
	if app.redis == nil {
		return
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}

	err = app.redis.Set(r.Context(), seatMapKey(showtimeId), payload, seatMapCacheTTL).Err()
	if err != nil {
		app.contextGetLogger(r).Error("seat map cache write failed", "error", err)
	}
}

func toSeatMapResponse(showtimeId int, seats []domain.Seat) SeatMapResponse {
	// Seats arrive pre-sorted by row and number, so rows can be assembled in
	// a single pass.

	var seatRows []SeatRowResponse
	currentRow := SeatRowResponse{Row: seats[0].Row}

	for _, seat := range seats {
		if seat.Row != currentRow.Row {
			seatRows = append(seatRows, currentRow)
			currentRow = SeatRowResponse{Row: seat.Row}
		}

		currentRow.Seats = append(currentRow.Seats, SeatResponse{
			Id:        seat.ID,
			Row:       seat.Row,
			Number:    seat.Number,
			Type:      string(seat.Type),
			Available: seat.Status == domain.SeatAvailable && seat.Active,
		})
	}

	seatRows = append(seatRows, currentRow)

	return SeatMapResponse{
		ShowtimeId: showtimeId,
		SeatRows:   seatRows,
	}
}

package app

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type FareResponse struct {
	Id        int             `json:"id"`
	Category  string          `json:"category"`
	BasePrice decimal.Decimal `json:"basePrice"`
}

type FaresResponse struct {
	Fares []FareResponse `json:"fares"`
}

// ListFaresHandler exposes the fare table so the counter can show prices
// before a booking is placed.
func (app *Application) ListFaresHandler(w http.ResponseWriter, r *http.Request) {
	fares, err := app.fareRepo.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := FaresResponse{Fares: make([]FareResponse, len(fares))}
	for i, fare := range fares {
		resp.Fares[i] = FareResponse{
			Id:        fare.ID,
			Category:  string(fare.Category),
			BasePrice: fare.BasePrice,
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

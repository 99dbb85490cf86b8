package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/cinestar/cinema-ticketing/internal/domain"
)

// Pricing resolves fare categories to unit prices. Pure lookup, no side
// effects.
type Pricing struct {
	fares domain.FareRepository
}

func NewPricing(fares domain.FareRepository) *Pricing {
	return &Pricing{fares: fares}
}

func (p *Pricing) Resolve(ctx context.Context, category domain.FareCategory) (*domain.Fare, error) {
	fare, err := p.fares.GetByCategory(ctx, category)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, fmt.Errorf("%q: %w", category, domain.ErrUnknownFareCategory)
		}

		return nil, err
	}

	return fare, nil
}

// InferCategory picks the fare a seat type mandates; standard seats default
// to the adult fare. Used by direct sales, where the counter does not supply
// fare categories.
func InferCategory(seatType domain.SeatType) domain.FareCategory {
	if required := domain.RequiredFare(seatType); required != "" {
		return required
	}

	return domain.FareAdult
}

package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type FareCategory string

const (
	FareAdult      FareCategory = "Adult"
	FareChild      FareCategory = "Child"
	FareAccessible FareCategory = "Accessible"
	FareCompanion  FareCategory = "Companion"
)

// Fare is a pricing class applied to a single seat.
type Fare struct {
	ID        int
	Category  FareCategory
	BasePrice decimal.Decimal
}

type FareRepository interface {
	GetByCategory(ctx context.Context, category FareCategory) (*Fare, error)
	GetAll(ctx context.Context) ([]Fare, error)
}

// RequiredFare returns the fare category a seat type mandates, or "" when any
// fare is acceptable.
func RequiredFare(seatType SeatType) FareCategory {
	switch seatType {
	case SeatTypeAccessible:
		return FareAccessible
	case SeatTypeCompanion:
		return FareCompanion
	default:
		return ""
	}
}

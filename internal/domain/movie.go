package domain

import (
	"context"
	"time"
)

type Movie struct {
	ID          int
	Title       string
	Genre       string
	DurationMin int
	Rating      string
	Director    string
	Synopsis    string
	ReleaseDate time.Time
	Active      bool
	CreatedBy   int
}

type MovieRepository interface {
	Create(ctx context.Context, movie *Movie) error
	GetById(ctx context.Context, movieID int) (*Movie, error)
}

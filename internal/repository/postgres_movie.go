package repository

import (
	"context"
	"errors"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresMovieRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresMovieRepository(pool *pgxpool.Pool) *PostgresMovieRepository {
	return &PostgresMovieRepository{pool: pool}
}

func (p *PostgresMovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	query := `
		INSERT INTO movies (title, genre, duration_min, rating, director, synopsis, release_date, active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8)
		RETURNING id
	`

	err := queryEngine(ctx, p.pool).QueryRow(
		ctx,
		query,
		movie.Title,
		movie.Genre,
		movie.DurationMin,
		movie.Rating,
		movie.Director,
		movie.Synopsis,
		movie.ReleaseDate,
		movie.CreatedBy,
	).Scan(&movie.ID)
	if err != nil {
		return mapPgError(err)
	}

	movie.Active = true

	return nil
}

func (p *PostgresMovieRepository) GetById(ctx context.Context, movieID int) (*domain.Movie, error) {
	query := `
		SELECT id, title, genre, duration_min, rating, director, synopsis, release_date, active, created_by
		FROM movies
		WHERE id = $1
	`

	var movie domain.Movie

	err := queryEngine(ctx, p.pool).QueryRow(ctx, query, movieID).Scan(
		&movie.ID,
		&movie.Title,
		&movie.Genre,
		&movie.DurationMin,
		&movie.Rating,
		&movie.Director,
		&movie.Synopsis,
		&movie.ReleaseDate,
		&movie.Active,
		&movie.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, mapPgError(err)
	}

	return &movie, nil
}

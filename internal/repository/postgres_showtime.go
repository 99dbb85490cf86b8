package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresShowtimeRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresShowtimeRepository(pool *pgxpool.Pool) *PostgresShowtimeRepository {
	return &PostgresShowtimeRepository{pool: pool}
}

func (p *PostgresShowtimeRepository) GetById(ctx context.Context, showtimeID int) (*domain.Showtime, error) {
	query := `
		SELECT id, movie_id, room_id, start_time, base_price, status, available_seats, created_by
		FROM showtimes
		WHERE id = $1
	`

	var showtime domain.Showtime

	err := queryEngine(ctx, p.pool).QueryRow(ctx, query, showtimeID).Scan(
		&showtime.ID,
		&showtime.MovieID,
		&showtime.RoomID,
		&showtime.StartTime,
		&showtime.BasePrice,
		&showtime.Status,
		&showtime.AvailableSeats,
		&showtime.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, mapPgError(err)
	}

	return &showtime, nil
}

func (p *PostgresShowtimeRepository) GetListings(ctx context.Context, now time.Time) ([]domain.Listing, error) {
	query := `
		SELECT s.id, m.title, r.name, s.start_time, s.base_price, s.available_seats
		FROM showtimes s
		JOIN movies m ON s.movie_id = m.id
		JOIN rooms r ON s.room_id = r.id
		WHERE s.status = 'Scheduled'
		  AND s.start_time > $1
		  AND s.available_seats > 0
		ORDER BY s.start_time
	`

	rows, err := queryEngine(ctx, p.pool).Query(ctx, query, now)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	listings := make([]domain.Listing, 0)

	for rows.Next() {
		var listing domain.Listing

		err = rows.Scan(
			&listing.ShowtimeID,
			&listing.MovieTitle,
			&listing.RoomName,
			&listing.StartTime,
			&listing.BasePrice,
			&listing.AvailableSeats,
		)
		if err != nil {
			return nil, err
		}

		listings = append(listings, listing)
	}

	if err = rows.Err(); err != nil {
		return nil, mapPgError(err)
	}

	return listings, nil
}

func (p *PostgresShowtimeRepository) Create(ctx context.Context, showtime *domain.Showtime) error {
	query := `
		INSERT INTO showtimes (movie_id, room_id, start_time, base_price, status, available_seats, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := queryEngine(ctx, p.pool).QueryRow(
		ctx,
		query,
		showtime.MovieID,
		showtime.RoomID,
		showtime.StartTime,
		showtime.BasePrice,
		showtime.Status,
		showtime.AvailableSeats,
		showtime.CreatedBy,
	).Scan(&showtime.ID)

	return mapPgError(err)
}

func (p *PostgresShowtimeRepository) HasOverlap(ctx context.Context, roomID int, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM showtimes s
			JOIN movies m ON s.movie_id = m.id
			WHERE s.room_id = $1
			  AND s.status = 'Scheduled'
			  AND s.start_time < $3
			  AND s.start_time + make_interval(mins => m.duration_min) > $2
		)
	`

	var overlap bool

	err := queryEngine(ctx, p.pool).QueryRow(ctx, query, roomID, start, end).Scan(&overlap)
	if err != nil {
		return false, mapPgError(err)
	}

	return overlap, nil
}

// AvailableSeatsForUpdate takes the write-exclusive row lock that serializes
// all bookings against this showtime. Only valid inside a transaction.
func (p *PostgresShowtimeRepository) AvailableSeatsForUpdate(ctx context.Context, showtimeID int) (int, error) {
	query := `
		SELECT available_seats
		FROM showtimes
		WHERE id = $1
		FOR UPDATE
	`

	var available int

	err := queryEngine(ctx, p.pool).QueryRow(ctx, query, showtimeID).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrRecordNotFound
		}

		return 0, mapPgError(err)
	}

	return available, nil
}

func (p *PostgresShowtimeRepository) AdjustAvailableSeats(ctx context.Context, showtimeID, delta int) error {
	// The BETWEEN guard enforces 0 <= available <= room capacity at the
	// storage layer; tripping it means a counter drifted.
	query := `
		UPDATE showtimes s
		SET available_seats = s.available_seats + $2
		FROM rooms r
		WHERE s.id = $1
		  AND r.id = s.room_id
		  AND s.available_seats + $2 BETWEEN 0 AND r.capacity
	`

	tag, err := queryEngine(ctx, p.pool).Exec(ctx, query, showtimeID, delta)
	if err != nil {
		return mapPgError(err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("available-seat adjustment of %d rejected for showtime %d: %w",
			delta, showtimeID, domain.ErrEditConflict)
	}

	return nil
}

type PostgresRoomRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRoomRepository(pool *pgxpool.Pool) *PostgresRoomRepository {
	return &PostgresRoomRepository{pool: pool}
}

func (p *PostgresRoomRepository) GetById(ctx context.Context, roomID int) (*domain.Room, error) {
	query := `
		SELECT id, name, capacity
		FROM rooms
		WHERE id = $1
	`

	var room domain.Room

	err := queryEngine(ctx, p.pool).QueryRow(ctx, query, roomID).Scan(&room.ID, &room.Name, &room.Capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, mapPgError(err)
	}

	return &room, nil
}

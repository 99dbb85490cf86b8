package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresReservationRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresReservationRepository(pool *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{pool: pool}
}

func (p *PostgresReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	db := queryEngine(ctx, p.pool)

	// The row is inserted under a throwaway code, then renamed to the
	// monotonic RES-NNNNN form once the id is known. Both statements run in
	// the caller's transaction, so the placeholder is never visible.
	query := `
		INSERT INTO reservations
			(code, showtime_id, customer_id, registered_by, state, total_price, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	placeholder := "TMP-" + uuid.NewString()

	err := db.QueryRow(
		ctx,
		query,
		placeholder,
		reservation.ShowtimeID,
		reservation.CustomerID,
		nullableID(reservation.RegisteredBy),
		reservation.State,
		reservation.TotalPrice,
		reservation.CreatedAt,
		reservation.ExpiresAt,
	).Scan(&reservation.ID)
	if err != nil {
		return mapPgError(err)
	}

	err = db.QueryRow(ctx, `
		UPDATE reservations
		SET code = 'RES-' || LPAD(id::text, 5, '0')
		WHERE id = $1
		RETURNING code, version
	`, reservation.ID).Scan(&reservation.Code, &reservation.Version)
	if err != nil {
		return mapPgError(err)
	}

	rows := make([][]any, 0, len(reservation.ReservationSeat))
	for i := range reservation.ReservationSeat {
		link := &reservation.ReservationSeat[i]
		link.ReservationID = reservation.ID

		rows = append(rows, []any{
			reservation.ID,
			link.ShowtimeID,
			link.SeatID,
			link.FareID,
			link.UnitPrice,
			link.Status,
		})
	}

	_, err = db.CopyFrom(
		ctx,
		pgx.Identifier{"reservation_seats"},
		[]string{"reservation_id", "showtime_id", "seat_id", "fare_id", "unit_price", "status"},
		pgx.CopyFromRows(rows),
	)

	return mapPgError(err)
}

const reservationColumns = `
	r.id, r.code, r.showtime_id, r.customer_id, COALESCE(r.registered_by, 0), r.state,
	r.total_price, r.created_at, r.expires_at, r.version,
	r.cancelled_by, r.cancelled_at, COALESCE(r.cancel_reason, '')
`

func (p *PostgresReservationRepository) GetById(ctx context.Context, reservationID int) (*domain.Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservations r WHERE r.id = $1`, reservationColumns)

	return p.queryReservation(ctx, query, reservationID)
}

func (p *PostgresReservationRepository) GetByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservations r WHERE r.code = $1`, reservationColumns)

	return p.queryReservation(ctx, query, code)
}

func (p *PostgresReservationRepository) queryReservation(ctx context.Context, query string, arg any) (*domain.Reservation, error) {
	var reservation domain.Reservation

	err := queryEngine(ctx, p.pool).QueryRow(ctx, query, arg).Scan(
		&reservation.ID,
		&reservation.Code,
		&reservation.ShowtimeID,
		&reservation.CustomerID,
		&reservation.RegisteredBy,
		&reservation.State,
		&reservation.TotalPrice,
		&reservation.CreatedAt,
		&reservation.ExpiresAt,
		&reservation.Version,
		&reservation.CancelledBy,
		&reservation.CancelledAt,
		&reservation.CancelReason,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, mapPgError(err)
	}

	links, err := p.retrieveSeatLinks(ctx, reservation.ID)
	if err != nil {
		return nil, err
	}
	reservation.ReservationSeat = links

	return &reservation, nil
}

func (p *PostgresReservationRepository) retrieveSeatLinks(ctx context.Context, reservationID int) ([]domain.ReservationSeat, error) {
	query := `
		SELECT rs.reservation_id, rs.showtime_id, rs.seat_id, rs.fare_id, rs.unit_price, rs.status,
		       s.seat_row || s.seat_number::text, s.seat_type
		FROM reservation_seats rs
		JOIN seats s ON rs.seat_id = s.id
		WHERE rs.reservation_id = $1
		ORDER BY s.seat_row, s.seat_number
	`

	rows, err := queryEngine(ctx, p.pool).Query(ctx, query, reservationID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	links := make([]domain.ReservationSeat, 0)

	for rows.Next() {
		var link domain.ReservationSeat

		err = rows.Scan(
			&link.ReservationID,
			&link.ShowtimeID,
			&link.SeatID,
			&link.FareID,
			&link.UnitPrice,
			&link.Status,
			&link.Location,
			&link.SeatType,
		)
		if err != nil {
			return nil, err
		}

		links = append(links, link)
	}

	if err = rows.Err(); err != nil {
		return nil, mapPgError(err)
	}

	return links, nil
}

// UpdateState transitions the reservation under its optimistic version and
// cascades the new status to every seat link. A stale version surfaces as
// ErrEditConflict, so only one of two racing confirm/cancel calls wins.
func (p *PostgresReservationRepository) UpdateState(
	ctx context.Context,
	reservation *domain.Reservation,
	linkStatus domain.ReservationSeatStatus) error {

	db := queryEngine(ctx, p.pool)

	query := `
		UPDATE reservations
		SET state = $1,
		    registered_by = $2,
		    cancelled_by = $3,
		    cancelled_at = $4,
		    cancel_reason = NULLIF($5, ''),
		    version = version + 1
		WHERE id = $6 AND version = $7
	`

	tag, err := db.Exec(
		ctx,
		query,
		reservation.State,
		nullableID(reservation.RegisteredBy),
		reservation.CancelledBy,
		reservation.CancelledAt,
		reservation.CancelReason,
		reservation.ID,
		reservation.Version,
	)
	if err != nil {
		return mapPgError(err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEditConflict
	}

	reservation.Version++

	_, err = db.Exec(ctx, `
		UPDATE reservation_seats
		SET status = $1
		WHERE reservation_id = $2
	`, linkStatus, reservation.ID)

	return mapPgError(err)
}

func (p *PostgresReservationRepository) SeatIDs(ctx context.Context, reservationID int) ([]int, error) {
	query := `
		SELECT seat_id
		FROM reservation_seats
		WHERE reservation_id = $1
	`

	rows, err := queryEngine(ctx, p.pool).Query(ctx, query, reservationID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	seatIDs := make([]int, 0)

	for rows.Next() {
		var id int

		if err = rows.Scan(&id); err != nil {
			return nil, err
		}

		seatIDs = append(seatIDs, id)
	}

	if err = rows.Err(); err != nil {
		return nil, mapPgError(err)
	}

	return seatIDs, nil
}

func (p *PostgresReservationRepository) ExpiredPending(ctx context.Context, now time.Time, limit int) ([]int, error) {
	query := `
		SELECT id
		FROM reservations
		WHERE state = 'Pending' AND expires_at < $1
		ORDER BY expires_at
		LIMIT $2
	`

	rows, err := queryEngine(ctx, p.pool).Query(ctx, query, now, limit)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	ids := make([]int, 0)

	for rows.Next() {
		var id int

		if err = rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, mapPgError(err)
	}

	return ids, nil
}

// nullableID maps the zero id to NULL for optional foreign keys.
func nullableID(id int) any {
	if id == 0 {
		return nil
	}

	return id
}

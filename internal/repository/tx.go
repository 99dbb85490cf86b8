package repository

import (
	"context"
	"errors"

	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every repository
// method works the same inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

type txKey struct{}

// PgxTxManager implements domain.TxManager on a pgx connection pool. The
// open transaction travels in the context; repositories pick it up through
// their db() helper.
type PgxTxManager struct {
	pool *pgxpool.Pool
}

func NewPgxTxManager(pool *pgxpool.Pool) *PgxTxManager {
	return &PgxTxManager{pool: pool}
}

func (m *PgxTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return mapPgError(err)
	}

	err = fn(context.WithValue(ctx, txKey{}, tx))
	if err == nil {
		return mapPgError(tx.Commit(ctx))
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
		return errors.Join(err, rollbackErr)
	}

	return mapPgError(err)
}

// queryEngine returns the transaction carried by ctx, or the pool when there
// is none.
func queryEngine(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}

	return pool
}

// mapPgError converts retryable Postgres failures into domain.ErrEditConflict
// so the booking engine can replay the transaction, and translates seat-link
// unique violations into domain.SeatsUnavailableError. The latter is the
// backstop for inserts that race past the availability check: the partial
// unique index on reservation_seats admits at most one live link per seat
// and showtime.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
			return domain.ErrEditConflict
		case pgerrcode.UniqueViolation:
			if pgErr.TableName == "reservation_seats" {
				return &domain.SeatsUnavailableError{}
			}
		}
	}

	return err
}

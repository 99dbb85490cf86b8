package booking

import (
	"context"
	"errors"
	"time"

	"github.com/cinestar/cinema-ticketing/internal/domain"
)

const sweepBatchSize = 100

// Sweeper is the reconciliation job that releases seats held by pending
// reservations whose 15-minute deadline passed. It runs outside the request
// path; without it an abandoned hold would leak its seats forever.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
	done     chan struct{}
}

func NewSweeper(engine *Engine, interval time.Duration) *Sweeper {
	return &Sweeper{
		engine:   engine,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Start(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.engine.logger.Info("expiration sweeper started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.engine.logger.Info("expiration sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Done is closed once Start has returned, so shutdown can wait for an
// in-flight sweep to finish.
func (s *Sweeper) Done() <-chan struct{} {
	return s.done
}

// Sweep expires one batch of overdue pending reservations. Each reservation
// is released in its own transaction; one failure does not block the rest.
func (s *Sweeper) Sweep(ctx context.Context) int {
	e := s.engine

	ids, err := e.reservations.ExpiredPending(ctx, e.now(), sweepBatchSize)
	if err != nil {
		e.logger.Error("failed to list expired reservations", "error", err)
		return 0
	}

	released := 0

	for _, id := range ids {
		if err := s.expire(ctx, id); err != nil {
			e.logger.Error("failed to expire reservation", "reservation_id", id, "error", err)
			continue
		}
		released++
	}

	if released > 0 {
		e.metrics.ReservationExpired(ctx, released)
		e.logger.Info("expired reservations released", "count", released)
	}

	return released
}

func (s *Sweeper) expire(ctx context.Context, reservationID int) error {
	e := s.engine

	return e.withRetry(ctx, func(ctx context.Context) error {
		reservation, err := e.reservations.GetById(ctx, reservationID)
		if err != nil {
			// Raced with a confirm or cancel that already won.
			if errors.Is(err, domain.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if !reservation.Expired(e.now()) {
			return nil
		}

		reservation.State = domain.ReservationExpired

		return e.releaseSeats(ctx, reservation)
	})
}

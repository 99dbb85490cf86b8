package integration_test

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http/httptest"
	"time"

	"github.com/cinestar/cinema-ticketing/internal/app"
	"github.com/cinestar/cinema-ticketing/internal/booking"
	"github.com/cinestar/cinema-ticketing/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

// TestApp bundles the HTTP application with a direct database handle and a
// booking engine wired over the same pool, so tests can exercise both the
// API surface and the engine against real Postgres.
type TestApp struct {
	App    *app.Application
	Engine *booking.Engine
	DB     *pgxpool.Pool
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	application, err := app.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	db, err := pgxpool.New(context.Background(), cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	engine := booking.NewEngine(booking.EngineOptions{
		Logger:       logger,
		Tx:           repository.NewPgxTxManager(db),
		Showtimes:    repository.NewPostgresShowtimeRepository(db),
		Seats:        repository.NewPostgresSeatRepository(db),
		Reservations: repository.NewPostgresReservationRepository(db),
		Tickets:      repository.NewPostgresTicketRepository(db),
		Customers:    repository.NewPostgresCustomerRepository(db),
		Employees:    repository.NewPostgresEmployeeRepository(db),
		Pricing:      booking.NewPricing(repository.NewPostgresFareRepository(db)),
	})

	return &TestApp{App: application, Engine: engine, DB: db}, nil
}

type BaseSuite struct {
	suite.Suite
	app            *TestApp
	dbContainer    *PostgresContainer
	cacheContainer *RedisContainer
	server         *httptest.Server
}

func (s *BaseSuite) SetupSuite() {
	ctx := context.Background()

	postgresContainer, err := getDbContainer(ctx)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}

	redisContainer, err := getCacheContainer(ctx)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		return
	}

	s.dbContainer = postgresContainer
	s.cacheContainer = redisContainer

	cfg := app.Config{
		Port: 3000,
		Env:  "test",
		DB: app.DBConfig{
			DSN:          postgresContainer.ConnectionString,
			MaxOpenConns: 25,
			MaxIdleTime:  2 * time.Minute,
		},
		Redis: app.RedisConfig{
			URL:          redisContainer.ConnectionString,
			MaxOpenConns: 10,
			MaxIdleConns: 10,
			MaxIdleTime:  2 * time.Minute,
		},
	}

	testApp, err := newTestApp(cfg)
	if err != nil {
		log.Printf("cannot initialize app: %s", err)
		return
	}

	s.app = testApp
	s.server = httptest.NewServer(testApp.App.Routes())
}

func (s *BaseSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.app != nil {
		s.app.DB.Close()
		s.app.App.Close()
	}
	if s.dbContainer != nil {
		if err := testcontainers.TerminateContainer(s.dbContainer.Container.Container); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
	if s.cacheContainer != nil {
		if err := testcontainers.TerminateContainer(s.cacheContainer.Container); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
}

// mustExec runs a statement against the test database and fails the suite on
// error. Used for seeding and fixture surgery.
func (s *BaseSuite) mustExec(query string, args ...any) {
	_, err := s.app.DB.Exec(context.Background(), query, args...)
	s.Require().NoError(err)
}

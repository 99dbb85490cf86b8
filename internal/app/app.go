package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cinestar/cinema-ticketing/internal/booking"
	"github.com/cinestar/cinema-ticketing/internal/domain"
	"github.com/cinestar/cinema-ticketing/internal/mailer"
	"github.com/cinestar/cinema-ticketing/internal/repository"
	appvalidator "github.com/cinestar/cinema-ticketing/internal/validator"
	"github.com/cinestar/cinema-ticketing/internal/vcs"
	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
)

var (
	version = vcs.Version()
)

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type Config struct {
	Port             int
	Env              string
	DB               DBConfig
	Redis            RedisConfig
	SMTP             SMTPConfig
	OtelCollectorUrl string
	SweepInterval    time.Duration
}

type Application struct {
	config    Config
	logger    *slog.Logger
	db        *pgxpool.Pool
	redis     redis.UniversalClient
	validator *validator.Validate
	mailer    mailer.Mailer

	engine  *booking.Engine
	sweeper *booking.Sweeper

	movieRepo    domain.MovieRepository
	showtimeRepo domain.ShowtimeRepository
	roomRepo     domain.RoomRepository
	customerRepo domain.CustomerRepository
	employeeRepo domain.EmployeeRepository
	fareRepo     domain.FareRepository
}

func New(cfg Config, logger *slog.Logger) (*Application, error) {
	db, err := newDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := newRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	movieRepo := repository.NewPostgresMovieRepository(db)
	showtimeRepo := repository.NewPostgresShowtimeRepository(db)
	roomRepo := repository.NewPostgresRoomRepository(db)
	seatRepo := repository.NewPostgresSeatRepository(db)
	customerRepo := repository.NewPostgresCustomerRepository(db)
	employeeRepo := repository.NewPostgresEmployeeRepository(db)
	fareRepo := repository.NewPostgresFareRepository(db)
	reservationRepo := repository.NewPostgresReservationRepository(db)
	ticketRepo := repository.NewPostgresTicketRepository(db)

	metrics, err := booking.NewMetrics(otel.Meter("cinema-ticketing"))
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, err
	}

	engine := booking.NewEngine(booking.EngineOptions{
		Logger:       logger,
		Tx:           repository.NewPgxTxManager(db),
		Showtimes:    showtimeRepo,
		Seats:        seatRepo,
		Reservations: reservationRepo,
		Tickets:      ticketRepo,
		Customers:    customerRepo,
		Employees:    employeeRepo,
		Pricing:      booking.NewPricing(fareRepo),
		Metrics:      metrics,
	})

	sweepInterval := cfg.SweepInterval
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	app := &Application{
		config:       cfg,
		logger:       logger,
		db:           db,
		redis:        redisClient,
		validator:    appvalidator.NewValidator(),
		mailer:       mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender),
		engine:       engine,
		sweeper:      booking.NewSweeper(engine, sweepInterval),
		movieRepo:    movieRepo,
		showtimeRepo: showtimeRepo,
		roomRepo:     roomRepo,
		customerRepo: customerRepo,
		employeeRepo: employeeRepo,
		fareRepo:     fareRepo,
	}

	return app, nil
}

func (app *Application) Close() {
	if app.redis != nil {
		app.redis.Close()
	}
	if app.db != nil {
		app.db.Close()
	}
}

func newRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func newDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Serve runs the HTTP server and the expiration sweeper until SIGINT or
// SIGTERM, then drains both.
func (app *Application) Serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go app.sweeper.Start(sweepCtx)

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		stopSweeper()
		<-app.sweeper.Done()

		shutdownError <- srv.Shutdown(ctx)
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env, "version", version)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

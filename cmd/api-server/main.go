package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/clinicdesk/booking-engine/internal/api"
	"github.com/clinicdesk/booking-engine/internal/app"
	"github.com/clinicdesk/booking-engine/internal/availability"
	"github.com/clinicdesk/booking-engine/internal/booking"
	"github.com/clinicdesk/booking-engine/internal/cache"
	"github.com/clinicdesk/booking-engine/internal/config"
	"github.com/clinicdesk/booking-engine/internal/db"
	redisclient "github.com/clinicdesk/booking-engine/internal/redis"
	"github.com/clinicdesk/booking-engine/internal/schedule"
)

const version = "0.3.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load error: " + err.Error())
	}

	logger := app.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	logger.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("version", version),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres and apply migrations
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()

	migCtx, cancelMig := context.WithTimeout(rootCtx, 30*time.Second)
	err = db.Migrate(migCtx, pgPool)
	cancelMig()
	if err != nil {
		logger.Fatal("migration error", zap.Error(err))
	}
	logger.Info("connected to Postgres, migrations applied")

	// Connect Redis
	rdb, err := redisclient.Connect(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Fatal("redis connection error", zap.Error(err))
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("error closing redis", zap.Error(err))
		}
	}()
	logger.Info("connected to Redis")

	// One cache instance, owned here and passed to dependents.
	appCache := cache.New(cfg.CacheTTL, cfg.CacheCapacity, logger)

	bookingRepo := booking.NewPgRepository(pgPool, cfg.QueryTimeout)
	scheduleRepo := schedule.NewPgRepository(pgPool, cfg.QueryTimeout)

	locker := redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
	publisher := redisclient.NewStatusPublisher(rdb)

	cachedSchedules := schedule.NewCachedRepository(scheduleRepo, appCache, logger)
	cachedBookings := booking.NewCachedReader(bookingRepo, appCache, logger)

	availabilitySvc := availability.NewService(cachedSchedules, cachedBookings, cfg.HorizonDays, logger)
	validator := booking.NewValidator(bookingRepo, locker, appCache, logger)
	lifecycle := booking.NewLifecycle(bookingRepo, publisher, appCache, logger)

	// Fixed-interval re-warm of displayed availability; freshness aid
	// only, correctness rests on the validator and the unique index.
	refresher := availability.NewRefresher(availabilitySvc, cachedSchedules, cfg.RefreshInterval, logger)
	go refresher.Run(rootCtx)

	router := api.NewRouter(api.RouterConfig{
		Availability: availabilitySvc,
		Validator:    validator,
		Lifecycle:    lifecycle,
		Bookings:     bookingRepo,
		Reader:       cachedBookings,
		PgPool:       pgPool,
		Redis:        rdb,
		Logger:       logger,
		Env:          cfg.Env,
		Version:      version,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	case <-rootCtx.Done():
	}

	logger.Info("shutting down api-server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/clinicdesk/booking-engine/internal/availability"
	"github.com/clinicdesk/booking-engine/internal/booking"
)

type RouterConfig struct {
	Availability *availability.Service
	Validator    *booking.Validator
	Lifecycle    *booking.Lifecycle
	Bookings     booking.Repository
	Reader       *booking.CachedReader
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Logger       *zap.Logger
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Availability
	r.Get("/providers/{id}/availability", availabilityHandler(cfg.Availability))

	// Bookings
	r.Post("/bookings", createBookingHandler(cfg.Validator))
	r.Get("/bookings", listBookingsHandler(cfg.Reader))
	r.Get("/bookings/{id}", getBookingHandler(cfg.Bookings))
	r.Get("/bookings/{id}/history", bookingHistoryHandler(cfg.Lifecycle))
	r.Post("/bookings/{id}/status", transitionBookingHandler(cfg.Lifecycle))

	return r
}

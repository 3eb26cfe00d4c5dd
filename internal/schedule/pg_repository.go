package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPgRepository(pool *pgxpool.Pool, timeout time.Duration) *PgRepository {
	return &PgRepository{pool: pool, timeout: timeout}
}

// GetSchedule assembles the full weekly configuration for a provider.
func (r *PgRepository) GetSchedule(ctx context.Context, providerID uuid.UUID) (*Config, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cfg := &Config{ProviderID: providerID}

	var durationMinutes int
	err := r.pool.QueryRow(ctx, `
		SELECT slot_duration_minutes, valid_from, valid_to, updated_at
		FROM schedule_configs
		WHERE provider_id = $1
	`, providerID).Scan(&durationMinutes, &cfg.ValidFrom, &cfg.ValidTo, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("load schedule config: %w", err)
	}
	cfg.SlotDuration = time.Duration(durationMinutes) * time.Minute

	if err := r.loadWeekdays(ctx, cfg); err != nil {
		return nil, err
	}
	if err := r.loadBreaks(ctx, cfg); err != nil {
		return nil, err
	}
	if err := r.loadVacations(ctx, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (r *PgRepository) loadWeekdays(ctx context.Context, cfg *Config) error {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, is_working, start_minute, end_minute
		FROM schedule_weekdays
		WHERE provider_id = $1
	`, cfg.ProviderID)
	if err != nil {
		return fmt.Errorf("load schedule weekdays: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var weekday, startMin, endMin int
		var working bool
		if err := rows.Scan(&weekday, &working, &startMin, &endMin); err != nil {
			return fmt.Errorf("scan schedule weekday: %w", err)
		}
		if weekday < 0 || weekday > 6 {
			return fmt.Errorf("schedule weekday out of range: %d", weekday)
		}
		cfg.Weekdays[weekday] = Weekday{
			Working: working,
			Start:   TimeOfDay(startMin),
			End:     TimeOfDay(endMin),
		}
	}
	return rows.Err()
}

func (r *PgRepository) loadBreaks(ctx context.Context, cfg *Config) error {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, start_minute, end_minute
		FROM schedule_breaks
		WHERE provider_id = $1
		ORDER BY weekday, start_minute
	`, cfg.ProviderID)
	if err != nil {
		return fmt.Errorf("load schedule breaks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var weekday, startMin, endMin int
		if err := rows.Scan(&weekday, &startMin, &endMin); err != nil {
			return fmt.Errorf("scan schedule break: %w", err)
		}
		if weekday < 0 || weekday > 6 {
			return fmt.Errorf("schedule break weekday out of range: %d", weekday)
		}
		cfg.Weekdays[weekday].Breaks = append(cfg.Weekdays[weekday].Breaks, BreakInterval{
			Start: TimeOfDay(startMin),
			End:   TimeOfDay(endMin),
		})
	}
	return rows.Err()
}

func (r *PgRepository) loadVacations(ctx context.Context, cfg *Config) error {
	rows, err := r.pool.Query(ctx, `
		SELECT starts_on, ends_on
		FROM schedule_vacations
		WHERE provider_id = $1
		ORDER BY starts_on
	`, cfg.ProviderID)
	if err != nil {
		return fmt.Errorf("load schedule vacations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v VacationRange
		if err := rows.Scan(&v.From, &v.To); err != nil {
			return fmt.Errorf("scan schedule vacation: %w", err)
		}
		cfg.Vacations = append(cfg.Vacations, v)
	}
	return rows.Err()
}

func (r *PgRepository) ListProviderIDs(ctx context.Context) ([]uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT provider_id FROM schedule_configs`)
	if err != nil {
		return nil, fmt.Errorf("list schedule providers: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan provider id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

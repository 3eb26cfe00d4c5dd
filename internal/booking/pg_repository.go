package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

const bookingColumns = `
	id, provider_id, subject_id, starts_at, status,
	status_changed_at, status_changed_by,
	cancellation_reason, completion_notes,
	created_at, updated_at
`

type PgRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPgRepository(pool *pgxpool.Pool, timeout time.Duration) *PgRepository {
	return &PgRepository{pool: pool, timeout: timeout}
}

// Helpers

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking

	err := row.Scan(
		&b.ID,
		&b.ProviderID,
		&b.SubjectID,
		&b.StartsAt,
		&b.Status,
		&b.StatusChangedAt,
		&b.StatusChangedBy,
		&b.CancellationReason,
		&b.CompletionNotes,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	b.StartsAt = b.StartsAt.UTC()
	return &b, nil
}

func (r *PgRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func persistenceErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrSlotTaken) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// Interface methods

func (r *PgRepository) Insert(ctx context.Context, b *Booking) (*Booking, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, persistenceErr("insert booking", err)
	}
	defer tx.Rollback(ctx)

	id := uuid.New()
	row := tx.QueryRow(ctx, `
		INSERT INTO bookings (
			id, provider_id, subject_id, starts_at, status,
			status_changed_at, status_changed_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, now(), $6, now(), now())
		RETURNING `+bookingColumns, id, b.ProviderID, b.SubjectID, b.StartsAt, b.Status, b.StatusChangedBy)

	created, err := scanBooking(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrSlotTaken
		}
		return nil, persistenceErr("insert booking", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO booking_status_history (booking_id, old_status, new_status, actor_id, created_at)
		VALUES ($1, NULL, $2, $3, now())
	`, created.ID, created.Status, created.StatusChangedBy)
	if err != nil {
		return nil, persistenceErr("insert booking history", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, persistenceErr("insert booking", err)
	}

	return created, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1
	`, id)

	b, err := scanBooking(row)
	return b, persistenceErr("get booking", err)
}

func (r *PgRepository) GetBlockingAt(ctx context.Context, providerID uuid.UUID, at time.Time) (*Booking, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE provider_id = $1
		  AND starts_at = $2
		  AND status = ANY($3)
	`, providerID, at, statusStrings(BlockingStatuses))

	b, err := scanBooking(row)
	return b, persistenceErr("get blocking booking", err)
}

func (r *PgRepository) ListByProvider(ctx context.Context, providerID uuid.UUID, dr DateRange) ([]Booking, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE provider_id = $1
		  AND starts_at >= $2
		  AND starts_at < $3
		ORDER BY starts_at
	`, providerID, dr.From, dr.To)
	if err != nil {
		return nil, persistenceErr("list bookings by provider", err)
	}
	defer rows.Close()

	return collectBookings(rows, "list bookings by provider")
}

func (r *PgRepository) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]Booking, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE subject_id = $1
		ORDER BY starts_at DESC
	`, subjectID)
	if err != nil {
		return nil, persistenceErr("list bookings by subject", err)
	}
	defer rows.Close()

	return collectBookings(rows, "list bookings by subject")
}

func (r *PgRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status, actorID uuid.UUID, note *string) (*Booking, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, persistenceErr("transition booking status", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		UPDATE bookings
		SET status = $2,
		    status_changed_at = now(),
		    status_changed_by = $3,
		    cancellation_reason = CASE WHEN $2::text = 'cancelled' THEN $4 ELSE cancellation_reason END,
		    completion_notes    = CASE WHEN $2::text = 'checked'   THEN $4 ELSE completion_notes END,
		    updated_at = now()
		WHERE id = $1
		  AND status = $5
		RETURNING `+bookingColumns, id, to, actorID, note, from)

	updated, err := scanBooking(row)
	if err != nil {
		return nil, persistenceErr("transition booking status", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO booking_status_history (booking_id, old_status, new_status, actor_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`, id, from, to, actorID, note)
	if err != nil {
		return nil, persistenceErr("append booking history", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, persistenceErr("transition booking status", err)
	}

	return updated, nil
}

func (r *PgRepository) ListHistory(ctx context.Context, bookingID uuid.UUID) ([]StatusHistoryEntry, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT id, booking_id, old_status, new_status, actor_id, note, created_at
		FROM booking_status_history
		WHERE booking_id = $1
		ORDER BY id
	`, bookingID)
	if err != nil {
		return nil, persistenceErr("list booking history", err)
	}
	defer rows.Close()

	var result []StatusHistoryEntry
	for rows.Next() {
		var e StatusHistoryEntry
		var oldStatus *string
		if err := rows.Scan(&e.ID, &e.BookingID, &oldStatus, &e.NewStatus, &e.ActorID, &e.Note, &e.CreatedAt); err != nil {
			return nil, persistenceErr("list booking history", err)
		}
		if oldStatus != nil {
			e.OldStatus = Status(*oldStatus)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceErr("list booking history", err)
	}

	return result, nil
}

func collectBookings(rows pgx.Rows, op string) ([]Booking, error) {
	var result []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, persistenceErr(op, err)
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceErr(op, err)
	}
	return result, nil
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/booking-engine/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	providerIDs, err := seedProviders(context.Background(), pool, 50)
	if err != nil {
		log.Fatalf("seed providers: %v", err)
	}
	if err := seedSubjects(context.Background(), pool, 2000); err != nil {
		log.Fatalf("seed subjects: %v", err)
	}
	if err := seedSchedules(context.Background(), pool, providerIDs); err != nil {
		log.Fatalf("seed schedules: %v", err)
	}

	log.Println("seed complete")
}

func seedProviders(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d providers", count)

	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		specialty := specialties[gofakeit.Number(0, len(specialties)-1)]

		_, err := pool.Exec(ctx, `
			INSERT INTO providers (id, name, specialty, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, id, "Dr. "+gofakeit.Name(), specialty)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func seedSubjects(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d subjects", count)

	for i := 0; i < count; i++ {
		_, err := pool.Exec(ctx, `
			INSERT INTO subjects (id, name, email, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, uuid.New(), gofakeit.Name(), gofakeit.Email())
		if err != nil {
			return err
		}
	}
	return nil
}

// seedSchedules gives every provider a Mon-Fri template with a lunch
// break and a one-year validity window. Slot lengths vary per provider.
func seedSchedules(ctx context.Context, pool *pgxpool.Pool, providerIDs []uuid.UUID) error {
	log.Printf("seeding schedules for %d providers", len(providerIDs))

	durations := []int{15, 20, 30, 60}
	today := time.Now().UTC().Truncate(24 * time.Hour)

	for _, id := range providerIDs {
		duration := durations[gofakeit.Number(0, len(durations)-1)]

		_, err := pool.Exec(ctx, `
			INSERT INTO schedule_configs (provider_id, slot_duration_minutes, valid_from, valid_to, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
		`, id, duration, today, today.AddDate(1, 0, 0))
		if err != nil {
			return err
		}

		for weekday := 0; weekday <= 6; weekday++ {
			working := weekday >= 1 && weekday <= 5
			start, end := 0, 0
			if working {
				start = 9 * 60
				end = 17 * 60
			}
			_, err := pool.Exec(ctx, `
				INSERT INTO schedule_weekdays (provider_id, weekday, is_working, start_minute, end_minute)
				VALUES ($1, $2, $3, $4, $5)
			`, id, weekday, working, start, end)
			if err != nil {
				return err
			}

			if working && gofakeit.Bool() {
				_, err := pool.Exec(ctx, `
					INSERT INTO schedule_breaks (provider_id, weekday, start_minute, end_minute)
					VALUES ($1, $2, $3, $4)
				`, id, weekday, 12*60, 13*60)
				if err != nil {
					return err
				}
			}
		}

		// An occasional week off later in the year.
		if gofakeit.Number(0, 4) == 0 {
			from := today.AddDate(0, gofakeit.Number(1, 6), 0)
			_, err := pool.Exec(ctx, `
				INSERT INTO schedule_vacations (provider_id, starts_on, ends_on)
				VALUES ($1, $2, $3)
			`, id, from, from.AddDate(0, 0, 6))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

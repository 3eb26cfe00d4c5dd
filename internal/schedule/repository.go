package schedule

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrScheduleNotFound = errors.New("schedule not found")

// Repository loads schedule configuration snapshots.
type Repository interface {
	GetSchedule(ctx context.Context, providerID uuid.UUID) (*Config, error)
	ListProviderIDs(ctx context.Context) ([]uuid.UUID, error)
}

package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const statusChannel = "bookings:status"

// StatusEvent is the live-update payload pushed after each committed
// status transition.
type StatusEvent struct {
	BookingID uuid.UUID `json:"booking_id"`
	NewStatus string    `json:"new_status"`
	At        time.Time `json:"at"`
}

// StatusPublisher pushes booking status changes over Redis pub/sub for
// the presentation layer to consume.
type StatusPublisher struct {
	client *redis.Client
}

func NewStatusPublisher(client *redis.Client) *StatusPublisher {
	return &StatusPublisher{client: client}
}

func (p *StatusPublisher) PublishStatusChange(ctx context.Context, bookingID uuid.UUID, newStatus string) error {
	ev := StatusEvent{
		BookingID: bookingID,
		NewStatus: newStatus,
		At:        time.Now().UTC(),
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal status event: %w", err)
	}

	if err := p.client.Publish(ctx, statusChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish status event: %w", err)
	}
	return nil
}

// SubscribeStatusChanges opens the live-update subscription. The caller
// owns the returned PubSub and must close it.
func SubscribeStatusChanges(ctx context.Context, client *redis.Client) *redis.PubSub {
	return client.Subscribe(ctx, statusChannel)
}

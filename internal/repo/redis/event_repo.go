package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const eventStreamPrefix = "events:"

// EventRepo publishes domain events to a Redis stream per topic.
// Delivery to consumers is at-least-once; deduplication is the producer's
// concern (match creation dedupes through the pair constraint).
type EventRepo struct {
	client *goredis.Client
	now    func() time.Time
}

func NewEventRepo(client *goredis.Client) *EventRepo {
	return &EventRepo{
		client: client,
		now:    time.Now,
	}
}

func (r *EventRepo) Publish(ctx context.Context, topic string, payload any) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(topic) == "" {
		return fmt.Errorf("event topic is required")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	if err := r.client.XAdd(ctx, &goredis.XAddArgs{
		Stream: eventStreamPrefix + topic,
		Values: map[string]interface{}{
			"event_id":     uuid.NewString(),
			"topic":        topic,
			"payload":      body,
			"published_at": r.now().UTC().UnixMilli(),
		},
	}).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}

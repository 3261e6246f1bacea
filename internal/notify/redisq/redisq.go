// Package redisq pushes broadcast events onto a Redis list so downstream
// consumers (web dashboards, pagers) can drain them as a queue.
package redisq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/linnemanlabs/unilert/internal/notify"
)

// DefaultQueueKey is the list key events are pushed to unless overridden.
const DefaultQueueKey = "unilert:events"

// Notifier publishes events to a Redis list with LPUSH; consumers pop from
// the right for FIFO delivery.
type Notifier struct {
	client *redis.Client
	key    string
}

// New creates a Redis queue notifier. An empty key falls back to
// DefaultQueueKey.
func New(client *redis.Client, key string) *Notifier {
	if key == "" {
		key = DefaultQueueKey
	}
	return &Notifier{client: client, key: key}
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 10,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis: connect %s: %w", addr, err)
	}
	return rdb, nil
}

// Send marshals the event and pushes it onto the queue.
func (n *Notifier) Send(ctx context.Context, ev notify.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("redisq: marshal event: %w", err)
	}

	if err := n.client.LPush(ctx, n.key, payload).Err(); err != nil {
		return fmt.Errorf("redisq: push event: %w", err)
	}
	return nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// Publisher pushes stored notifications to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, n *models.Notification) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *models.Notification) error { return nil }

// RedisPublisher publishes notifications on a per-recipient pub/sub channel,
// "<prefix>:<user id>".
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

type notificationEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	ContentID string    `json:"content_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewRedisPublisher(url, prefix string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return &RedisPublisher{client: redis.NewClient(opts), prefix: prefix}, nil
}

func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *RedisPublisher) Publish(ctx context.Context, n *models.Notification) error {
	evt := notificationEvent{
		ID:        n.ID.String(),
		UserID:    n.UserID.String(),
		Type:      string(n.Type),
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	}
	if n.ContentID != nil {
		evt.ContentID = n.ContentID.String()
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.prefix+":"+evt.UserID, payload).Err()
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

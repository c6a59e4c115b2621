package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ijwi/citizen-server/internal/models"
)

const channelPrefix = "rooms:"

// Envelope is the wire format published on a room channel.
type Envelope struct {
	Room    string          `json:"room"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sent_at"`
}

// RedisPublisher broadcasts events on Redis pub/sub channels, one channel
// per room.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher connects a publisher to the given Redis URL.
func NewRedisPublisher(redisURL string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisPublisher{client: client}, nil
}

// NewRedisPublisherWithClient wraps an existing Redis client.
func NewRedisPublisherWithClient(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish sends one event to its room channel.
func (p *RedisPublisher) Publish(ctx context.Context, event models.Event) error {
	env := Envelope{
		Room:    event.Room,
		Type:    event.Type,
		Payload: event.Payload,
		SentAt:  time.Now(),
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := p.client.Publish(ctx, channelPrefix+event.Room, raw).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", event.Room, err)
	}
	return nil
}

// Subscribe opens a pub/sub subscription on the given rooms. The caller owns
// the returned PubSub and must Close it.
func (p *RedisPublisher) Subscribe(ctx context.Context, rooms []string) *redis.PubSub {
	channels := make([]string, len(rooms))
	for i, room := range rooms {
		channels[i] = channelPrefix + room
	}
	return p.client.Subscribe(ctx, channels...)
}

// Ping checks if Redis is reachable.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

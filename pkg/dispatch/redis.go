package dispatch

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher is the subset of *redis.Client used by Redis.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Redis publishes envelopes as JSON on a pub/sub channel.
type Redis struct {
	client  Publisher
	channel string
}

// NewRedis creates a Redis dispatcher publishing on channel.
func NewRedis(client Publisher, channel string) *Redis {
	return &Redis{client: client, channel: channel}
}

// DialRedis parses url, pings the server and returns the client.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Channel returns the pub/sub channel.
func (r *Redis) Channel() string { return r.channel }

// Dispatch implements Dispatcher.
func (r *Redis) Dispatch(ctx context.Context, env Envelope) error {
	msg, err := env.Encode()
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, msg).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", r.channel, err)
	}
	return nil
}

// Package redispeer publishes broadcast messages to peers over Redis
// pub/sub.
package redispeer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces published channels when none is configured.
const DefaultPrefix = "dm"

// Client is the subset of go-redis the publisher uses.
type Client interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// Publisher implements broadcast.Sender by publishing JSON payloads on
// "<prefix>:<channel>".
type Publisher struct {
	client Client
	prefix string
}

// NewClient dials a single Redis instance. Connections are lazy.
func NewClient(addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("redispeer: address is required")
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

// NewPublisher returns a Publisher over client.
//
// Precondition: client must be non-nil.
func NewPublisher(client Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Publisher{client: client, prefix: prefix}
}

// Topic returns the Redis channel used for a broadcast channel.
func (p *Publisher) Topic(channel string) string {
	return p.prefix + ":" + channel
}

// Send publishes payload on channel.
func (p *Publisher) Send(ctx context.Context, channel string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", channel, err)
	}
	if err := p.client.Publish(ctx, p.Topic(channel), data).Err(); err != nil {
		return fmt.Errorf("publishing %s: %w", channel, err)
	}
	return nil
}

// Close releases the Redis connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}

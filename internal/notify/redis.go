package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 2 * time.Second

// RedisSink publishes change events to redis channels so that other
// instances (or a separate gateway) can fan them out. One channel per
// topic, prefixed.
type RedisSink struct {
	client *redis.Client
	prefix string
}

// NewRedisSink creates a sink over an existing client.
func NewRedisSink(client *redis.Client, prefix string) *RedisSink {
	return &RedisSink{client: client, prefix: prefix}
}

// Publish encodes the payload as JSON and pushes it to the topic channel.
// Failures are logged and dropped; the mutation already committed.
func (s *RedisSink) Publish(topic string, payload interface{}) {
	raw, err := json.Marshal(Envelope{Topic: topic, Data: payload})
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("failed to encode redis notification")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := s.client.Publish(ctx, s.prefix+topic, raw).Err(); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("failed to publish redis notification")
	}
}

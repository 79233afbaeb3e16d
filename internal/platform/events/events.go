package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Channel carries change notifications for every engine mutation. The
// notifier worker tails it and fans snapshots out to websocket clients.
const Channel = "challenge:events"

type Type string

const (
	TypeStateChanged       Type = "state_changed"
	TypeScoreChanged       Type = "score_changed"
	TypeSubmissionRecorded Type = "submission_recorded"
	TypeBroadcastChanged   Type = "broadcast_changed"
)

type Event struct {
	Type          Type      `json:"type"`
	ParticipantID string    `json:"participant_id,omitempty"`
	TaskID        string    `json:"task_id,omitempty"`
	At            time.Time `json:"at"`
}

// Publisher is the write side of the change-notification stream. Services
// treat publish failures as non-fatal: observers catch up on the next event.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type RedisPublisher struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

func NewRedisPublisher(rdb *redis.Client, logger zerolog.Logger) *RedisPublisher {
	return &RedisPublisher{
		rdb:    rdb,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("type", string(event.Type)).Msg("Failed to marshal event")
		return
	}
	if err := p.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		p.logger.Warn().Err(err).Str("type", string(event.Type)).Msg("Failed to publish event")
	}
}

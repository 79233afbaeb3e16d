package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"linux_challenge/internal/app/service"
	"linux_challenge/internal/platform/config"
	"linux_challenge/internal/platform/events"
	"linux_challenge/internal/platform/metrics"
	"linux_challenge/internal/realtime"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Notifier tails the change-notification channel and pushes fresh snapshots
// to the websocket hub. Observers get full-state snapshots, never deltas, so
// a missed event only delays convergence until the next one.
type Notifier struct {
	rdb          *redis.Client
	hub          *realtime.Hub
	game         *service.GameService
	participants *service.ParticipantService
	submissions  *service.SubmissionService
	logger       zerolog.Logger
}

func NewNotifier(
	rdb *redis.Client,
	hub *realtime.Hub,
	game *service.GameService,
	participants *service.ParticipantService,
	submissions *service.SubmissionService,
	logger zerolog.Logger,
) *Notifier {
	return &Notifier{
		rdb:          rdb,
		hub:          hub,
		game:         game,
		participants: participants,
		submissions:  submissions,
		logger:       logger.With().Str("component", "notifier").Logger(),
	}
}

func (n *Notifier) Start(ctx context.Context) {
	sub := n.rdb.Subscribe(ctx, events.Channel)
	defer sub.Close()

	n.logger.Info().Str("channel", events.Channel).Msg("Notifier started")
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			n.logger.Info().Msg("Notifier stopping")
			return
		case msg, ok := <-ch:
			if !ok {
				if errors.Is(ctx.Err(), context.Canceled) {
					return
				}
				n.logger.Error().Msg("Subscription channel closed, reconnecting")
				time.Sleep(time.Second)
				sub = n.rdb.Subscribe(ctx, events.Channel)
				ch = sub.Channel()
				continue
			}
			var event events.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				n.logger.Warn().Err(err).Msg("Ignoring malformed event")
				continue
			}
			n.dispatch(ctx, event)
		}
	}
}

func (n *Notifier) dispatch(ctx context.Context, event events.Event) {
	switch event.Type {
	case events.TypeStateChanged, events.TypeBroadcastChanged:
		n.pushSession(ctx)
	case events.TypeScoreChanged:
		n.pushLeaderboard(ctx)
	case events.TypeSubmissionRecorded:
		n.pushActivity(ctx)
	default:
		n.logger.Warn().Str("type", string(event.Type)).Msg("Unknown event type")
	}
}

func (n *Notifier) pushSession(ctx context.Context) {
	snapshot, err := n.game.Snapshot(ctx)
	if err != nil {
		n.logger.Error().Err(err).Msg("Failed to build session snapshot")
		return
	}
	n.push(realtime.TopicSession, snapshot)
}

func (n *Notifier) pushLeaderboard(ctx context.Context) {
	start := time.Now()
	rows, err := n.participants.Leaderboard(ctx)
	if err != nil {
		n.logger.Error().Err(err).Msg("Failed to recompute leaderboard")
		return
	}
	metrics.LeaderboardRecompute.Observe(time.Since(start).Seconds())
	n.push(realtime.TopicLeaderboard, rows)
}

func (n *Notifier) pushActivity(ctx context.Context) {
	entries, err := n.submissions.ActivityFeed(ctx, config.AppConfig.ActivityFeedLimit)
	if err != nil {
		n.logger.Error().Err(err).Msg("Failed to load activity feed")
		return
	}
	n.push(realtime.TopicActivity, entries)
}

func (n *Notifier) push(topic string, data interface{}) {
	payload, err := json.Marshal(realtime.Envelope{Topic: topic, Data: data})
	if err != nil {
		n.logger.Error().Err(err).Str("topic", topic).Msg("Failed to marshal snapshot")
		return
	}
	n.hub.Broadcast(payload)
}

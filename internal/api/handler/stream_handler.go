package handler

import (
	"encoding/json"
	"net/http"

	"linux_challenge/internal/app/service"
	"linux_challenge/internal/platform/metrics"
	"linux_challenge/internal/realtime"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The stream carries only public state; origin checks are left to
		// the reverse proxy.
		return true
	},
}

// StreamHandler upgrades clients onto the push-only websocket stream. Each
// new client receives a snapshot of every topic before live updates start.
type StreamHandler struct {
	hub               *realtime.Hub
	gameService       *service.GameService
	participantSvc    *service.ParticipantService
	submissionService *service.SubmissionService
	logger            zerolog.Logger
}

func NewStreamHandler(
	hub *realtime.Hub,
	gs *service.GameService,
	ps *service.ParticipantService,
	ss *service.SubmissionService,
	logger zerolog.Logger,
) *StreamHandler {
	return &StreamHandler{
		hub:               hub,
		gameService:       gs,
		participantSvc:    ps,
		submissionService: ss,
		logger:            logger.With().Str("component", "stream_handler").Logger(),
	}
}

func (h *StreamHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Websocket upgrade failed")
		return
	}

	client := realtime.NewClient(uuid.NewString(), h.hub, conn, h.logger)

	// Queue the initial snapshots ahead of registration so the client sees
	// current state before any live update.
	h.queueSnapshot(client, realtime.TopicSession, func() (interface{}, error) {
		return h.gameService.Snapshot(r.Context())
	})
	h.queueSnapshot(client, realtime.TopicLeaderboard, func() (interface{}, error) {
		return h.participantSvc.Leaderboard(r.Context())
	})
	h.queueSnapshot(client, realtime.TopicActivity, func() (interface{}, error) {
		return h.submissionService.ActivityFeed(r.Context(), 0)
	})

	h.hub.Register <- client
	metrics.WSConnections.Inc()

	go client.WritePump()
	go func() {
		client.ReadPump()
		metrics.WSConnections.Dec()
	}()
}

func (h *StreamHandler) queueSnapshot(client *realtime.Client, topic string, fetch func() (interface{}, error)) {
	data, err := fetch()
	if err != nil {
		h.logger.Error().Err(err).Str("topic", topic).Msg("Failed to build initial snapshot")
		return
	}
	payload, err := json.Marshal(realtime.Envelope{Topic: topic, Data: data})
	if err != nil {
		h.logger.Error().Err(err).Str("topic", topic).Msg("Failed to marshal initial snapshot")
		return
	}
	select {
	case client.Send <- payload:
	default:
	}
}

package realtime

import (
	"sync"

	"github.com/rs/zerolog"
)

// Topics carried over the websocket stream. Every connected client receives
// every topic; the envelope's topic field lets the client route it.
const (
	TopicSession     = "session"
	TopicLeaderboard = "leaderboard"
	TopicActivity    = "activity"
)

type Envelope struct {
	Topic string      `json:"topic"`
	Data  interface{} `json:"data"`
}

// Hub fans state snapshots out to connected websocket clients. Delivery is
// at-least-once per snapshot with no gap guarantee between snapshots; a slow
// client is dropped rather than allowed to stall the others.
type Hub struct {
	clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
	logger     zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.With().Str("component", "hub").Logger(),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	h.logger.Info().
		Str("clientId", client.ID).
		Int("totalClients", len(h.clients)).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
		h.logger.Info().
			Str("clientId", client.ID).
			Int("totalClients", len(h.clients)).
			Msg("Client unregistered")
	}
}

// Broadcast queues data for every connected client. Clients whose send
// buffer is full are disconnected.
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	var stalled []*Client
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			stalled = append(stalled, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stalled {
		h.logger.Warn().Str("clientId", client.ID).Msg("Dropping slow client")
		h.unregisterClient(client)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

package websocket

import (
	"log/slog"
	"sync"
)

// Hub maintains the set of connected clients per group and fans envelopes
// out to them.
type Hub struct {
	// Registered clients by group_id -> client set
	groups map[string]map[*Client]bool

	broadcast  chan *BroadcastMessage
	register   chan *Client
	unregister chan *Client

	// Message handler for processing inbound client messages
	handler *MessageHandler

	log *slog.Logger
	mu  sync.RWMutex
}

// BroadcastMessage is one envelope headed for a group. TargetPlayerID
// narrows delivery to that player's connections; ExcludeClient skips the
// sender.
type BroadcastMessage struct {
	GroupID        string
	Envelope       *ServerEnvelope
	TargetPlayerID string
	ExcludeClient  *Client
}

// NewHub creates a new Hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		groups:     make(map[string]map[*Client]bool),
		broadcast:  make(chan *BroadcastMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// SetHandler sets the message handler for the hub. Called once during
// wiring; the hub and handler reference each other.
func (h *Hub) SetHandler(handler *MessageHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = handler
}

func (h *Hub) messageHandler() *MessageHandler {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.handler
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.groups[client.GroupID] == nil {
				h.groups[client.GroupID] = make(map[*Client]bool)
			}
			h.groups[client.GroupID][client] = true
			total := len(h.groups[client.GroupID])
			h.mu.Unlock()
			h.log.Info("ws client registered", "group_id", client.GroupID, "player_id", client.PlayerID, "total", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if group, ok := h.groups[client.GroupID]; ok {
				if _, ok := group[client]; ok {
					delete(group, client)
					close(client.send)
					if len(group) == 0 {
						delete(h.groups, client.GroupID)
					}
				}
			}
			h.mu.Unlock()
			h.log.Info("ws client unregistered", "group_id", client.GroupID, "player_id", client.PlayerID)

		case message := <-h.broadcast:
			h.mu.Lock()
			group, exists := h.groups[message.GroupID]
			if exists {
				for client := range group {
					if message.ExcludeClient != nil && client == message.ExcludeClient {
						continue
					}
					if message.TargetPlayerID != "" && client.PlayerID != message.TargetPlayerID {
						continue
					}
					select {
					case client.send <- message.Envelope:
					default:
						close(client.send)
						delete(group, client)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends an envelope to all clients in a group.
func (h *Hub) Broadcast(groupID string, envelope *ServerEnvelope) {
	h.broadcast <- &BroadcastMessage{GroupID: groupID, Envelope: envelope}
}

// BroadcastExcept sends an envelope to all clients in a group except one.
func (h *Hub) BroadcastExcept(groupID string, envelope *ServerEnvelope, exclude *Client) {
	h.broadcast <- &BroadcastMessage{GroupID: groupID, Envelope: envelope, ExcludeClient: exclude}
}

// SendToPlayer sends an envelope to every connection a player holds in the
// group. Used for night prompts and other private messages.
func (h *Hub) SendToPlayer(groupID, playerID string, envelope *ServerEnvelope) {
	h.broadcast <- &BroadcastMessage{GroupID: groupID, Envelope: envelope, TargetPlayerID: playerID}
}

// GroupClientCount returns the number of clients connected for a group.
func (h *Hub) GroupClientCount(groupID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if group, ok := h.groups[groupID]; ok {
		return len(group)
	}
	return 0
}

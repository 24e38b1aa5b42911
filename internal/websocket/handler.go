package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/catudon1276/Games-Plaza/internal/ratelimit"
	"github.com/catudon1276/Games-Plaza/internal/werewolf"
)

// MessageHandler routes inbound client messages to chat, game commands or
// status queries.
type MessageHandler struct {
	hub     *Hub
	games   *werewolf.Hub
	limiter ratelimit.Limiter
	log     *slog.Logger
}

// NewMessageHandler creates a handler. A nil limiter disables chat rate
// limiting.
func NewMessageHandler(hub *Hub, games *werewolf.Hub, limiter ratelimit.Limiter, log *slog.Logger) *MessageHandler {
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &MessageHandler{
		hub:     hub,
		games:   games,
		limiter: limiter,
		log:     log,
	}
}

// HandleMessage processes one inbound message from a client.
func (h *MessageHandler) HandleMessage(ctx context.Context, client *Client, msg *ClientInMessage) {
	if len(msg.Type) > MaxClientMessageTypeLength || !ValidClientMessageTypes[msg.Type] {
		h.sendError(client, msg.CorrelationID, "unknown message type")
		return
	}

	switch msg.Type {
	case ClientMessageTypeChat:
		h.handleChat(client, msg)
	case ClientMessageTypeCommand:
		h.handleCommand(client, msg)
	case ClientMessageTypeStatus:
		h.handleStatus(client, msg)
	}
}

func (h *MessageHandler) handleChat(client *Client, msg *ClientInMessage) {
	if ok, retryAfter := h.limiter.Allow(client.RateLimitKey); !ok {
		h.sendError(client, msg.CorrelationID, fmt.Sprintf("rate limited, retry in %ds", retryAfter))
		return
	}

	text := strings.TrimSpace(payloadString(msg.Payload, "message"))
	if text == "" {
		h.sendError(client, msg.CorrelationID, "empty chat message")
		return
	}
	if len(text) > MaxChatMessageLength {
		text = text[:MaxChatMessageLength]
	}

	h.hub.BroadcastExcept(client.GroupID, &ServerEnvelope{
		Type:  ServerTypeEvent,
		Event: ServerEventChat,
		Payload: map[string]interface{}{
			"player_id": client.PlayerID,
			"name":      client.DisplayName,
			"message":   text,
		},
	}, client)
}

func (h *MessageHandler) handleCommand(client *Client, msg *ClientInMessage) {
	verb := strings.TrimSpace(payloadString(msg.Payload, "verb"))
	target := strings.TrimSpace(payloadString(msg.Payload, "target"))
	if verb == "" {
		h.sendError(client, msg.CorrelationID, "missing verb")
		return
	}

	session, res, err := h.dispatch(client, verb, target)
	if err != nil {
		h.sendError(client, msg.CorrelationID, err.Error())
		return
	}

	h.hub.SendToPlayer(client.GroupID, client.PlayerID, &ServerEnvelope{
		Type:          ServerTypeResult,
		Event:         ServerEventCommandResult,
		CorrelationID: msg.CorrelationID,
		Payload: map[string]interface{}{
			"verb":    verb,
			"success": res.Success,
			"reason":  res.Reason,
			"message": res.Message,
		},
	})

	if res.Public != "" {
		h.hub.Broadcast(client.GroupID, &ServerEnvelope{
			Type:  ServerTypeEvent,
			Event: ServerEventAnnouncement,
			Payload: map[string]interface{}{
				"message": res.Public,
			},
		})
	}
	for _, pm := range res.Privates {
		h.hub.SendToPlayer(client.GroupID, pm.PlayerID, &ServerEnvelope{
			Type:  ServerTypeEvent,
			Event: ServerEventPrivate,
			Payload: map[string]interface{}{
				"message": pm.Message,
			},
		})
	}

	// Inline win paths also fire the session's end sink, which broadcasts
	// the game_ended event; nothing more to do here.
	if res.Win != nil && session != nil {
		h.log.Info("game ended by command",
			"group_id", client.GroupID,
			"winner", res.Win.Winner,
			"condition", res.Win.Condition)
	}
}

// dispatch resolves the session and applies the verb. Join creates the
// session on first use so a group needs no separate setup call over the
// socket.
func (h *MessageHandler) dispatch(client *Client, verb, target string) (*werewolf.Session, werewolf.Result, error) {
	var session *werewolf.Session
	var err error

	if verb == werewolf.VerbJoin {
		session, err = h.games.Create(client.GroupID)
		if errors.Is(err, werewolf.ErrSessionExists) {
			session, err = h.games.Get(client.GroupID)
		}
	} else {
		session, err = h.games.Get(client.GroupID)
	}
	if err != nil {
		return nil, werewolf.Result{}, err
	}

	switch verb {
	case werewolf.VerbJoin:
		return session, session.AddPlayer(client.PlayerID, client.DisplayName), nil
	case werewolf.VerbLeave:
		return session, session.RemovePlayer(client.PlayerID), nil
	case werewolf.VerbStart:
		return session, session.Start(client.PlayerID), nil
	case werewolf.VerbEnd:
		return session, session.End(), nil
	default:
		return session, session.SubmitCommand(client.PlayerID, verb, target), nil
	}
}

func (h *MessageHandler) handleStatus(client *Client, msg *ClientInMessage) {
	session, err := h.games.Get(client.GroupID)
	if err != nil {
		h.sendError(client, msg.CorrelationID, err.Error())
		return
	}

	snap := session.Status()
	h.hub.SendToPlayer(client.GroupID, client.PlayerID, &ServerEnvelope{
		Type:          ServerTypeState,
		Event:         ServerEventState,
		CorrelationID: msg.CorrelationID,
		Payload:       snapshotPayload(snap),
	})
}

func (h *MessageHandler) sendError(client *Client, correlationID, message string) {
	h.hub.SendToPlayer(client.GroupID, client.PlayerID, &ServerEnvelope{
		Type:          ServerTypeError,
		CorrelationID: correlationID,
		Payload: map[string]interface{}{
			"message": message,
		},
	})
}

// snapshotPayload flattens a session snapshot for the wire. Roles are
// already redacted by the engine for living players.
func snapshotPayload(snap werewolf.Snapshot) map[string]interface{} {
	players := make([]map[string]interface{}, 0, len(snap.Players))
	for _, p := range snap.Players {
		entry := map[string]interface{}{
			"id":    p.ID,
			"name":  p.Name,
			"alive": p.Alive,
		}
		if p.Role != "" {
			entry["role"] = string(p.Role)
		}
		if p.Death != "" {
			entry["death"] = string(p.Death)
			entry["death_day"] = p.DeathDay
		}
		players = append(players, entry)
	}

	payload := map[string]interface{}{
		"group_id":    snap.GroupID,
		"phase":       string(snap.Phase),
		"day":         snap.Day,
		"alive_count": snap.AliveCount,
		"players":     players,
		"created_at":  snap.CreatedAt.Format(time.RFC3339),
	}
	if snap.Winner != nil {
		payload["winner"] = string(snap.Winner.Winner)
		payload["win_condition"] = snap.Winner.Condition
	}
	return payload
}

func payloadString(payload map[string]interface{}, key string) string {
	if payload == nil {
		return ""
	}
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

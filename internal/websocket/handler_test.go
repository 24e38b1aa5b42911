package websocket

import (
	"testing"
	"time"

	"github.com/catudon1276/Games-Plaza/internal/ratelimit"
	"github.com/catudon1276/Games-Plaza/internal/werewolf"
)

func newTestHandler(t *testing.T, cfg werewolf.Config, limiter ratelimit.Limiter) (*Hub, *werewolf.Hub) {
	t.Helper()
	hub := NewHub(nil)
	go hub.Run()

	sink := NewEngineSink(hub, nil, nil, nil)
	games := werewolf.NewHub(cfg, sink, nil)
	hub.SetHandler(NewMessageHandler(hub, games, limiter, nil))
	t.Cleanup(games.Close)
	return hub, games
}

func registerClient(t *testing.T, hub *Hub, groupID, playerID string) *Client {
	t.Helper()
	c := newTestClient(hub, groupID, playerID)
	c.DisplayName = playerID
	hub.register <- c
	return c
}

// expectEnvelope drains the client's queue until an envelope with the given
// event (or, for event=="", the given type) arrives.
func expectEnvelope(t *testing.T, c *Client, envType, event string) *ServerEnvelope {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case env := <-c.send:
			if env.Type == envType && (event == "" || env.Event == event) {
				return env
			}
		case <-deadline:
			t.Fatalf("client %s: no %s/%s envelope", c.PlayerID, envType, event)
			return nil
		}
	}
}

func sendMessage(c *Client, msgType string, payload map[string]interface{}) {
	handler := c.hub.messageHandler()
	handler.HandleMessage(c.ctx, c, &ClientInMessage{Type: msgType, Payload: payload})
}

func TestHandler_UnknownMessageType(t *testing.T) {
	hub, _ := newTestHandler(t, werewolf.Config{}, nil)
	c := registerClient(t, hub, "group-1", "p1")
	waitForCount(t, hub, "group-1", 1)

	sendMessage(c, "teleport", nil)
	expectEnvelope(t, c, ServerTypeError, "")
}

func TestHandler_Chat(t *testing.T) {
	hub, _ := newTestHandler(t, werewolf.Config{}, nil)
	sender := registerClient(t, hub, "group-1", "p1")
	peer := registerClient(t, hub, "group-1", "p2")
	waitForCount(t, hub, "group-1", 2)

	sendMessage(sender, ClientMessageTypeChat, map[string]interface{}{"message": "good evening"})

	env := expectEnvelope(t, peer, ServerTypeEvent, ServerEventChat)
	if env.Payload["message"] != "good evening" {
		t.Errorf("unexpected chat payload %v", env.Payload)
	}
	if env.Payload["player_id"] != "p1" {
		t.Errorf("expected sender id in payload, got %v", env.Payload["player_id"])
	}

	select {
	case got := <-sender.send:
		t.Errorf("sender received own chat %v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandler_ChatValidation(t *testing.T) {
	hub, _ := newTestHandler(t, werewolf.Config{}, nil)
	c := registerClient(t, hub, "group-1", "p1")
	waitForCount(t, hub, "group-1", 1)

	sendMessage(c, ClientMessageTypeChat, map[string]interface{}{"message": "   "})
	expectEnvelope(t, c, ServerTypeError, "")
}

func TestHandler_ChatRateLimited(t *testing.T) {
	hub, _ := newTestHandler(t, werewolf.Config{}, ratelimit.NewInMemory(1, time.Minute))
	c := registerClient(t, hub, "group-1", "p1")
	c.RateLimitKey = "203.0.113.9"
	waitForCount(t, hub, "group-1", 1)

	sendMessage(c, ClientMessageTypeChat, map[string]interface{}{"message": "one"})
	sendMessage(c, ClientMessageTypeChat, map[string]interface{}{"message": "two"})
	expectEnvelope(t, c, ServerTypeError, "")
}

func TestHandler_JoinCreatesSession(t *testing.T) {
	hub, games := newTestHandler(t, werewolf.Config{}, nil)
	c := registerClient(t, hub, "group-1", "p1")
	waitForCount(t, hub, "group-1", 1)

	sendMessage(c, ClientMessageTypeCommand, map[string]interface{}{"verb": "join"})

	res := expectEnvelope(t, c, ServerTypeResult, ServerEventCommandResult)
	if res.Payload["success"] != true {
		t.Fatalf("join failed: %v", res.Payload)
	}
	expectEnvelope(t, c, ServerTypeEvent, ServerEventAnnouncement)

	if games.Count() != 1 {
		t.Errorf("expected 1 session, got %d", games.Count())
	}
	session, err := games.Get("group-1")
	if err != nil {
		t.Fatalf("session not found: %v", err)
	}
	if got := session.Status().AliveCount; got != 1 {
		t.Errorf("expected 1 player, got %d", got)
	}
}

// Sessions ended through the game hub (the HTTP delete path) are removed
// from the registry before the sink callback lands; the game_ended event
// must still reach the group.
func TestEngineSink_SessionEndedAfterHubEnd(t *testing.T) {
	hub, games := newTestHandler(t, werewolf.Config{}, nil)
	c := registerClient(t, hub, "group-1", "p1")
	waitForCount(t, hub, "group-1", 1)

	sendMessage(c, ClientMessageTypeCommand, map[string]interface{}{"verb": "join"})
	expectEnvelope(t, c, ServerTypeResult, ServerEventCommandResult)

	if err := games.End("group-1"); err != nil {
		t.Fatalf("hub end: %v", err)
	}

	env := expectEnvelope(t, c, ServerTypeEvent, ServerEventGameEnded)
	if env.Payload["group_id"] != "group-1" {
		t.Errorf("game_ended payload: %v", env.Payload)
	}
}

func TestHandler_CommandWithoutSession(t *testing.T) {
	hub, _ := newTestHandler(t, werewolf.Config{}, nil)
	c := registerClient(t, hub, "group-1", "p1")
	waitForCount(t, hub, "group-1", 1)

	sendMessage(c, ClientMessageTypeCommand, map[string]interface{}{"verb": "vote", "target": "p2"})
	expectEnvelope(t, c, ServerTypeError, "")
}

func TestHandler_MissingVerb(t *testing.T) {
	hub, _ := newTestHandler(t, werewolf.Config{}, nil)
	c := registerClient(t, hub, "group-1", "p1")
	waitForCount(t, hub, "group-1", 1)

	sendMessage(c, ClientMessageTypeCommand, nil)
	expectEnvelope(t, c, ServerTypeError, "")
}

func TestHandler_Status(t *testing.T) {
	hub, _ := newTestHandler(t, werewolf.Config{}, nil)
	c := registerClient(t, hub, "group-1", "p1")
	waitForCount(t, hub, "group-1", 1)

	sendMessage(c, ClientMessageTypeCommand, map[string]interface{}{"verb": "join"})
	expectEnvelope(t, c, ServerTypeResult, ServerEventCommandResult)

	sendMessage(c, ClientMessageTypeStatus, nil)
	env := expectEnvelope(t, c, ServerTypeState, ServerEventState)
	if env.Payload["phase"] != "waiting" {
		t.Errorf("expected waiting phase, got %v", env.Payload["phase"])
	}
	if env.Payload["group_id"] != "group-1" {
		t.Errorf("unexpected group in state payload: %v", env.Payload["group_id"])
	}
}

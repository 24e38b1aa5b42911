package websocket

import (
	"context"
	"log/slog"
	"time"

	"github.com/catudon1276/Games-Plaza/internal/store"
	"github.com/catudon1276/Games-Plaza/internal/werewolf"
)

const persistTimeout = 5 * time.Second

// EngineSink delivers game events from sessions to connected clients and
// mirrors them into the persistence layer. It implements werewolf.EventSink.
type EngineSink struct {
	hub     *Hub
	matches *store.MatchStore
	events  *store.EventStore
	log     *slog.Logger
}

// NewEngineSink creates a sink. The match and event stores may be nil when
// the server runs without a database; events are then broadcast only.
func NewEngineSink(hub *Hub, matches *store.MatchStore, events *store.EventStore, log *slog.Logger) *EngineSink {
	if log == nil {
		log = slog.Default()
	}
	return &EngineSink{
		hub:     hub,
		matches: matches,
		events:  events,
		log:     log,
	}
}

// Broadcast sends a public game announcement to every client in the group.
func (s *EngineSink) Broadcast(groupID, message string) {
	s.hub.Broadcast(groupID, &ServerEnvelope{
		Type:  ServerTypeEvent,
		Event: ServerEventAnnouncement,
		Payload: map[string]interface{}{
			"message": message,
		},
	})

	if s.events != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			defer cancel()
			if _, err := s.events.RecordEvent(ctx, groupID, store.EventKindAnnouncement, message); err != nil {
				s.log.Warn("record event failed", "group_id", groupID, "err", err)
			}
		}()
	}
}

// Notify sends a private message to one player's connections. Private
// content is never written to the event log.
func (s *EngineSink) Notify(groupID, playerID, message string) {
	s.hub.SendToPlayer(groupID, playerID, &ServerEnvelope{
		Type:  ServerTypeEvent,
		Event: ServerEventPrivate,
		Payload: map[string]interface{}{
			"message": message,
		},
	})
}

// SessionEnded broadcasts the outcome and persists the match from the final
// snapshot. The snapshot arrives with the callback, so persistence works no
// matter how the session was ended or whether it is still registered.
// A nil result means the session was abandoned before a winner emerged.
func (s *EngineSink) SessionEnded(snap werewolf.Snapshot, result *werewolf.WinResult) {
	payload := map[string]interface{}{
		"group_id": snap.GroupID,
	}
	if result != nil {
		payload["winner"] = string(result.Winner)
		payload["condition"] = result.Condition
		payload["message"] = result.Message
	}
	s.hub.Broadcast(snap.GroupID, &ServerEnvelope{
		Type:    ServerTypeEvent,
		Event:   ServerEventGameEnded,
		Payload: payload,
	})

	if s.matches == nil {
		return
	}

	rec := matchRecordFromSnapshot(snap, result)
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if _, err := s.matches.RecordMatch(ctx, rec); err != nil {
		s.log.Error("record match failed", "group_id", snap.GroupID, "err", err)
		return
	}

	if s.events != nil {
		message := "Game ended without a winner."
		if result != nil {
			message = result.Message
		}
		if _, err := s.events.RecordEvent(ctx, snap.GroupID, store.EventKindGameEnded, message); err != nil {
			s.log.Warn("record event failed", "group_id", snap.GroupID, "err", err)
		}
	}
}

func matchRecordFromSnapshot(snap werewolf.Snapshot, result *werewolf.WinResult) store.MatchRecord {
	rec := store.MatchRecord{
		GroupID: snap.GroupID,
		Days:    snap.Day,
	}
	if result != nil {
		rec.Winner = string(result.Winner)
		rec.Condition = result.Condition
	}
	for _, p := range snap.Players {
		rec.Players = append(rec.Players, store.MatchPlayerRecord{
			PlayerID:   p.ID,
			Name:       p.Name,
			Role:       string(p.Role),
			Survived:   p.Alive,
			DeathCause: string(p.Death),
			DeathDay:   p.DeathDay,
		})
	}
	return rec
}

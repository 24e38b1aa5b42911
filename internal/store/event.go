package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GroupEvent is one public announcement made in a group. Private messages
// are never written here.
type GroupEvent struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Event kinds.
const (
	EventKindAnnouncement = "announcement"
	EventKindGameEnded    = "game_ended"
)

// EventStore persists the public announcement log, write-behind. Sessions
// never read it back; it exists for history queries only.
type EventStore struct {
	pool *pgxpool.Pool
}

// NewEventStore creates an EventStore backed by the given pool.
func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{pool: pool}
}

// RecordEvent appends one event to the group's log.
func (s *EventStore) RecordEvent(ctx context.Context, groupID, kind, message string) (*GroupEvent, error) {
	if groupID == "" || kind == "" {
		return nil, fmt.Errorf("record event: group_id and kind are required")
	}
	ev := &GroupEvent{
		ID:      uuid.NewString(),
		GroupID: groupID,
		Kind:    kind,
		Message: message,
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO group_events (id, group_id, kind, message)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		ev.ID, ev.GroupID, ev.Kind, ev.Message,
	).Scan(&ev.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return ev, nil
}

// ListByGroup returns the most recent events for a group, newest first.
func (s *EventStore) ListByGroup(ctx context.Context, groupID string, limit int) ([]GroupEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, group_id, kind, message, created_at
		FROM group_events
		WHERE group_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		groupID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []GroupEvent
	for rows.Next() {
		var ev GroupEvent
		if err := rows.Scan(&ev.ID, &ev.GroupID, &ev.Kind, &ev.Message, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

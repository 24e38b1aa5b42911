package store

import (
	"context"
	"testing"
)

func TestEventStore_RecordAndList(t *testing.T) {
	pool := SetupTestDB(t)
	s := NewEventStore(pool)
	ctx := context.Background()

	messages := []string{"The game has started.", "Bob was executed.", "Village team wins!"}
	for _, msg := range messages {
		if _, err := s.RecordEvent(ctx, "group-1", EventKindAnnouncement, msg); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.RecordEvent(ctx, "group-2", EventKindGameEnded, "other group"); err != nil {
		t.Fatal(err)
	}

	events, err := s.ListByGroup(ctx, "group-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("events: %d", len(events))
	}
	// Newest first.
	if events[0].Message != "Village team wins!" {
		t.Errorf("latest event: %q", events[0].Message)
	}
	for _, ev := range events {
		if ev.GroupID != "group-1" || ev.ID == "" || ev.CreatedAt.IsZero() {
			t.Errorf("event: %+v", ev)
		}
	}
}

func TestEventStore_RejectsMissingGroup(t *testing.T) {
	pool := SetupTestDB(t)
	s := NewEventStore(pool)

	if _, err := s.RecordEvent(context.Background(), "", EventKindAnnouncement, "x"); err == nil {
		t.Error("event recorded without a group")
	}
}

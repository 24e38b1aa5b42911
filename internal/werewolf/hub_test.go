package werewolf

import (
	"errors"
	"testing"
)

func TestHub_CreateGetEnd(t *testing.T) {
	h := NewHub(DefaultConfig(), nil, nil)
	defer h.Close()

	s, err := h.Create("group-1")
	if err != nil {
		t.Fatal(err)
	}
	if s.GroupID != "group-1" {
		t.Errorf("group id: %s", s.GroupID)
	}

	if _, err := h.Create("group-1"); !errors.Is(err, ErrSessionExists) {
		t.Errorf("duplicate create: %v", err)
	}

	got, err := h.Get("group-1")
	if err != nil || got != s {
		t.Errorf("get: %v %v", got, err)
	}
	if _, err := h.Get("group-2"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("missing group: %v", err)
	}
	if h.Count() != 1 {
		t.Errorf("count: %d", h.Count())
	}

	if err := h.End("group-1"); err != nil {
		t.Fatal(err)
	}
	if !s.Ended() {
		t.Error("hub End did not end the session")
	}
	if err := h.End("group-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("double end: %v", err)
	}
	if h.Count() != 0 {
		t.Errorf("count after end: %d", h.Count())
	}
}

// Ending through the hub removes the session from the map; the sink must
// still receive the full final snapshot for match persistence.
func TestHub_EndDeliversFinalSnapshot(t *testing.T) {
	sink := newRecordingSink()
	h := NewHub(DefaultConfig(), sink, nil)
	defer h.Close()

	s, err := h.Create("group-1")
	if err != nil {
		t.Fatal(err)
	}
	s.AddPlayer("u1", "Alice")
	s.AddPlayer("u2", "Bob")

	if err := h.End("group-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Get("group-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("session still registered after End: %v", err)
	}

	waitForSinkEnded(t, sink)
	sink.mu.Lock()
	snap, result := sink.snapshot, sink.result
	sink.mu.Unlock()

	if snap.GroupID != "group-1" {
		t.Errorf("snapshot group: %q", snap.GroupID)
	}
	if len(snap.Players) != 2 {
		t.Errorf("snapshot roster: %d players", len(snap.Players))
	}
	if result != nil {
		t.Errorf("aborted game reported a winner: %+v", result)
	}
}

func TestHub_CreateReplacesEndedSession(t *testing.T) {
	h := NewHub(DefaultConfig(), nil, nil)
	defer h.Close()

	first, err := h.Create("group-1")
	if err != nil {
		t.Fatal(err)
	}
	first.End()

	second, err := h.Create("group-1")
	if err != nil {
		t.Fatalf("create over an ended session: %v", err)
	}
	if second == first {
		t.Error("ended session reused")
	}
}

func TestHub_CloseEndsEverything(t *testing.T) {
	h := NewHub(DefaultConfig(), nil, nil)
	a, _ := h.Create("a")
	b, _ := h.Create("b")

	h.Close()
	if !a.Ended() || !b.Ended() {
		t.Error("sessions survived hub close")
	}
	if h.Count() != 0 {
		t.Errorf("count after close: %d", h.Count())
	}
	h.Close() // second close is a no-op
}

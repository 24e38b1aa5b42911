package werewolf

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"
)

func makeRoster(roles ...RoleID) []*Player {
	players := make([]*Player, len(roles))
	for i, r := range roles {
		players[i] = &Player{
			ID:    fmt.Sprintf("p%d", i+1),
			Name:  fmt.Sprintf("Player %d", i+1),
			Role:  r,
			Alive: true,
		}
	}
	return players
}

func testRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func emptyCycleState(day int) *CycleState {
	return &CycleState{
		Day:        day,
		Guarded:    make(map[string]bool),
		PrevGuards: make(map[string]string),
	}
}

func waitForPhase(t *testing.T, s *Session, want Phase) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Phase() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for phase %s, still at %s", want, s.Phase())
}

func waitForSinkEnded(t *testing.T, sink *recordingSink) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		sink.mu.Lock()
		calls := sink.endedCalls
		sink.mu.Unlock()
		if calls == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("SessionEnded was never delivered")
}

// recordingSink captures sink traffic for assertions.
type recordingSink struct {
	mu         sync.Mutex
	broadcasts []string
	notifies   map[string][]string
	endedCalls int
	snapshot   Snapshot
	result     *WinResult
}

func newRecordingSink() *recordingSink {
	return &recordingSink{notifies: make(map[string][]string)}
}

func (r *recordingSink) Broadcast(groupID, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcasts = append(r.broadcasts, msg)
}

func (r *recordingSink) Notify(groupID, playerID, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifies[playerID] = append(r.notifies[playerID], msg)
}

func (r *recordingSink) SessionEnded(snapshot Snapshot, result *WinResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endedCalls++
	r.snapshot = snapshot
	r.result = result
}

func (r *recordingSink) broadcastCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.broadcasts)
}

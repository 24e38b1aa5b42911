package werewolf

import (
	"sync"
	"time"
)

// Timer keys. Each session has at most one live timer per key; arming a key
// cancels its predecessor.
const (
	timerDay   = "day"
	timerVote  = "vote"
	timerNight = "night"
	timerIdle  = "idle"
)

// scheduler is the per-session timer owner. Callbacks fire on the timer
// goroutine; they must take the session lock themselves and re-check phase,
// since a natural completion may have raced the expiry. After Close no
// callback fires.
type scheduler struct {
	mu     sync.Mutex
	gen    map[string]uint64
	timers map[string]*time.Timer
	closed bool
}

func newScheduler() *scheduler {
	return &scheduler{
		gen:    make(map[string]uint64),
		timers: make(map[string]*time.Timer),
	}
}

// Arm schedules fn after d, replacing any timer already armed for key.
func (s *scheduler) Arm(key string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.gen[key]++
	g := s.gen[key]
	s.timers[key] = time.AfterFunc(d, func() {
		s.mu.Lock()
		if s.closed || s.gen[key] != g {
			s.mu.Unlock()
			return
		}
		delete(s.timers, key)
		s.mu.Unlock()
		fn()
	})
}

// Cancel discards the timer for key, if any. A callback already past its
// generation check may still run; session callbacks re-check phase for that
// reason.
func (s *scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
	s.gen[key]++
}

// Close cancels everything and prevents any further arming or firing.
func (s *scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}

package werewolf

import (
	"log/slog"
	"sync"
	"time"
)

// Hub owns all live sessions, one per group id. Session creation and lookup
// are serialized here; everything inside a session is serialized by the
// session itself.
type Hub struct {
	mu       sync.Mutex
	cfg      Config
	log      *slog.Logger
	sink     EventSink
	sessions map[string]*Session
	done     chan struct{}
	closed   bool
}

// NewHub returns a hub and starts its background sweep of ended sessions.
func NewHub(cfg Config, sink EventSink, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	h := &Hub{
		cfg:      cfg.withDefaults(),
		log:      log,
		sink:     sink,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
	go h.sweep()
	return h
}

// Create starts a new session for the group. Fails if a live session already
// exists for it.
func (h *Hub) Create(groupID string) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.sessions[groupID]; ok && !existing.Ended() {
		return nil, ErrSessionExists
	}
	s := NewSession(groupID, h.cfg, h.sink, h.log)
	h.sessions[groupID] = s
	h.log.Info("session created", "group_id", groupID)
	return s, nil
}

// Get returns the live session for the group.
func (h *Hub) Get(groupID string) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[groupID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// End terminates and removes the group's session. The session is ended
// before removal so its final sink callback is already on its way by the
// time the map entry is gone.
func (h *Hub) End(groupID string) error {
	h.mu.Lock()
	s, ok := h.sessions[groupID]
	h.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.End()

	h.mu.Lock()
	if h.sessions[groupID] == s {
		delete(h.sessions, groupID)
	}
	h.mu.Unlock()
	h.log.Info("session ended", "group_id", groupID)
	return nil
}

// Count reports the number of tracked sessions.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close ends every session and stops the sweep loop.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.done)
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.End()
	}
}

// sweep drops sessions whose game has ended so the map does not grow without
// bound. Ended sessions hold no timers, only memory.
func (h *Hub) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.mu.Lock()
			for id, s := range h.sessions {
				if s.Ended() {
					delete(h.sessions, id)
					h.log.Info("session swept", "group_id", id)
				}
			}
			h.mu.Unlock()
		}
	}
}

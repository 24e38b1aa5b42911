package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/catudon1276/Games-Plaza/internal/store"
)

// HistoryHandler serves finished matches and the public event log. Both
// stores may be nil when the server runs without a database.
type HistoryHandler struct {
	matches *store.MatchStore
	events  *store.EventStore
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(matches *store.MatchStore, events *store.EventStore) *HistoryHandler {
	return &HistoryHandler{matches: matches, events: events}
}

// ListMatches handles GET /api/groups/{group_id}/matches.
func (h *HistoryHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	if h.matches == nil {
		respondError(w, http.StatusServiceUnavailable, "match history is not enabled")
		return
	}
	groupID := chi.URLParam(r, "group_id")
	if !validateGroupID(groupID) {
		respondError(w, http.StatusBadRequest, "invalid group_id")
		return
	}

	matches, err := h.matches.ListByGroup(r.Context(), groupID, limitParam(r))
	if err != nil {
		slog.Error("list matches failed", "group_id", groupID, "request_id", requestID(r), "err", err)
		respondError(w, http.StatusInternalServerError, "could not list matches")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"matches": matches})
}

// GetMatch handles GET /api/matches/{match_id}.
func (h *HistoryHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	if h.matches == nil {
		respondError(w, http.StatusServiceUnavailable, "match history is not enabled")
		return
	}
	matchID := chi.URLParam(r, "match_id")

	match, roster, err := h.matches.GetMatch(r.Context(), matchID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "match not found")
		return
	}
	if err != nil {
		slog.Error("get match failed", "match_id", matchID, "request_id", requestID(r), "err", err)
		respondError(w, http.StatusInternalServerError, "could not load match")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"match":   match,
		"players": roster,
	})
}

// ListEvents handles GET /api/groups/{group_id}/events.
func (h *HistoryHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		respondError(w, http.StatusServiceUnavailable, "event history is not enabled")
		return
	}
	groupID := chi.URLParam(r, "group_id")
	if !validateGroupID(groupID) {
		respondError(w, http.StatusBadRequest, "invalid group_id")
		return
	}

	events, err := h.events.ListByGroup(r.Context(), groupID, limitParam(r))
	if err != nil {
		slog.Error("list events failed", "group_id", groupID, "request_id", requestID(r), "err", err)
		respondError(w, http.StatusInternalServerError, "could not list events")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// limitParam parses ?limit= with the store defaults as fallback.
func limitParam(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

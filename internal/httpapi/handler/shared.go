package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/catudon1276/Games-Plaza/internal/auth"
)

// contextKey type for request context keys (avoids collisions with other packages).
type contextKey string

// PlayerContextKey is the context key for the verified join token claims
// (set by RequirePlayer middleware).
const PlayerContextKey contextKey = "player_claims"

// ClaimsFromRequest returns the verified claims from the request context if
// set by the player auth middleware; otherwise nil.
func ClaimsFromRequest(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(PlayerContextKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// requestID returns the request ID from chi's context for logging.
func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(middleware.RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("response encode failed", "err", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

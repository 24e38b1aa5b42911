package websocket

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/catudon1276/Games-Plaza/internal/auth"
)

// WSHandler upgrades authenticated HTTP requests to websocket connections.
type WSHandler struct {
	hub         *Hub
	tokenSecret []byte
}

// NewWSHandler creates a new websocket handler.
func NewWSHandler(hub *Hub, tokenSecret []byte) *WSHandler {
	return &WSHandler{hub: hub, tokenSecret: tokenSecret}
}

// HandleGroupWebSocket handles GET /ws/groups/{group_id}. The join token is
// taken from the "token" query parameter or the Authorization header, and
// its group claim must match the URL.
func (h *WSHandler) HandleGroupWebSocket(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "group_id")
	if groupID == "" {
		http.Error(w, "group_id is required", http.StatusBadRequest)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if token == "" {
		http.Error(w, "token is required", http.StatusUnauthorized)
		return
	}

	claims, err := auth.VerifyToken(token, h.tokenSecret)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if claims.GroupID != groupID {
		http.Error(w, "token not valid for this group", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "group_id", groupID, "err", err)
		return
	}

	client := &Client{
		hub:          h.hub,
		conn:         conn,
		send:         make(chan *ServerEnvelope, 256),
		GroupID:      groupID,
		PlayerID:     claims.PlayerID,
		DisplayName:  claims.Name,
		RateLimitKey: rateLimitKeyFromRequest(r),
		ctx:          context.Background(),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// rateLimitKeyFromRequest extracts the client IP for rate limiting,
// honoring the proxy headers set by the router middleware.
func rateLimitKeyFromRequest(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

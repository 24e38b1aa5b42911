package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/catudon1276/Games-Plaza/internal/auth"
	"github.com/catudon1276/Games-Plaza/internal/werewolf"
)

// Validation limits for group endpoints.
const (
	DisplayNameMinLen = 1
	DisplayNameMaxLen = 64
	PassphraseMaxLen  = 128
)

// groupIDPattern matches chat group identifiers as messaging platforms
// issue them: URL-safe, reasonably short.
var groupIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// GroupHandler handles group session HTTP requests.
type GroupHandler struct {
	games       *werewolf.Hub
	tokenSecret []byte

	// Optional join passphrases per group, bcrypt hashed. Sessions are
	// in-memory, so the hashes live here too.
	mu          sync.Mutex
	passphrases map[string]string
}

// NewGroupHandler creates a new GroupHandler. If tokenSecret is non-empty,
// join responses include a websocket auth token.
func NewGroupHandler(games *werewolf.Hub, tokenSecret []byte) *GroupHandler {
	return &GroupHandler{
		games:       games,
		tokenSecret: tokenSecret,
		passphrases: make(map[string]string),
	}
}

func validateDisplayName(displayName string) string {
	s := strings.TrimSpace(displayName)
	if len(s) < DisplayNameMinLen {
		return "display_name is required"
	}
	if len(s) > DisplayNameMaxLen {
		return fmt.Sprintf("display_name must be at most %d characters", DisplayNameMaxLen)
	}
	return ""
}

func validateGroupID(groupID string) bool {
	return groupIDPattern.MatchString(groupID)
}

type createGroupRequest struct {
	GroupID    string `json:"group_id"`
	Passphrase string `json:"passphrase,omitempty"`
}

type createGroupResponse struct {
	GroupID string `json:"group_id"`
	Phase   string `json:"phase"`
}

// CreateGroup handles POST /api/groups. It opens a recruiting session for
// the group; an optional passphrase gates later joins.
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.GroupID = strings.TrimSpace(req.GroupID)
	if !validateGroupID(req.GroupID) {
		respondError(w, http.StatusBadRequest, "group_id must be 1-64 URL-safe characters")
		return
	}
	if len(req.Passphrase) > PassphraseMaxLen {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("passphrase must be at most %d characters", PassphraseMaxLen))
		return
	}

	session, err := h.games.Create(req.GroupID)
	if errors.Is(err, werewolf.ErrSessionExists) {
		respondError(w, http.StatusConflict, "a game is already running for this group")
		return
	}
	if err != nil {
		slog.Error("create session failed", "group_id", req.GroupID, "request_id", requestID(r), "err", err)
		respondError(w, http.StatusInternalServerError, "could not create session")
		return
	}

	h.mu.Lock()
	delete(h.passphrases, req.GroupID)
	if req.Passphrase != "" {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(req.Passphrase), bcrypt.DefaultCost)
		if hashErr != nil {
			h.mu.Unlock()
			slog.Error("passphrase hash failed", "group_id", req.GroupID, "err", hashErr)
			respondError(w, http.StatusInternalServerError, "could not create session")
			return
		}
		h.passphrases[req.GroupID] = string(hash)
	}
	h.mu.Unlock()

	respondJSON(w, http.StatusCreated, createGroupResponse{
		GroupID: req.GroupID,
		Phase:   string(session.Phase()),
	})
}

type joinGroupRequest struct {
	DisplayName string `json:"display_name"`
	Passphrase  string `json:"passphrase,omitempty"`
}

type joinGroupResponse struct {
	GroupID   string `json:"group_id"`
	PlayerID  string `json:"player_id"`
	Message   string `json:"message"`
	Token     string `json:"token,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// JoinGroup handles POST /api/groups/{group_id}/join. A successful join
// mints the websocket token for this player.
func (h *GroupHandler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "group_id")
	if !validateGroupID(groupID) {
		respondError(w, http.StatusBadRequest, "invalid group_id")
		return
	}

	var req joinGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateDisplayName(req.DisplayName); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	h.mu.Lock()
	hash := h.passphrases[groupID]
	h.mu.Unlock()
	if hash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Passphrase)); err != nil {
			respondError(w, http.StatusForbidden, "wrong passphrase")
			return
		}
	}

	session, err := h.games.Get(groupID)
	if err != nil {
		respondError(w, http.StatusNotFound, "no session for this group")
		return
	}

	playerID := uuid.NewString()
	res := session.AddPlayer(playerID, strings.TrimSpace(req.DisplayName))
	if !res.Success {
		respondResult(w, res)
		return
	}

	resp := joinGroupResponse{
		GroupID:  groupID,
		PlayerID: playerID,
		Message:  res.Message,
	}
	if len(h.tokenSecret) > 0 {
		token, expiresAt, tokenErr := auth.GenerateToken(groupID, playerID, strings.TrimSpace(req.DisplayName), h.tokenSecret, auth.DefaultTokenExpiry)
		if tokenErr != nil {
			slog.Error("token generation failed", "group_id", groupID, "err", tokenErr)
			respondError(w, http.StatusInternalServerError, "could not issue token")
			return
		}
		resp.Token = token
		resp.ExpiresAt = expiresAt.Format(time.RFC3339)
	}
	respondJSON(w, http.StatusCreated, resp)
}

// StartGame handles POST /api/groups/{group_id}/start. The caller must be
// a joined player.
func (h *GroupHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromRequest(r)
	session, ok := h.sessionForRequest(w, r, claims)
	if !ok {
		return
	}
	respondResult(w, session.Start(claims.PlayerID))
}

type commandRequest struct {
	Verb   string `json:"verb"`
	Target string `json:"target,omitempty"`
}

// SubmitCommand handles POST /api/groups/{group_id}/commands: the HTTP
// fallback for game verbs when no socket is open.
func (h *GroupHandler) SubmitCommand(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromRequest(r)
	session, ok := h.sessionForRequest(w, r, claims)
	if !ok {
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	verb := strings.TrimSpace(req.Verb)
	if verb == "" {
		respondError(w, http.StatusBadRequest, "verb is required")
		return
	}

	var res werewolf.Result
	switch verb {
	case werewolf.VerbLeave:
		res = session.RemovePlayer(claims.PlayerID)
	case werewolf.VerbStart:
		res = session.Start(claims.PlayerID)
	case werewolf.VerbEnd:
		res = session.End()
	default:
		res = session.SubmitCommand(claims.PlayerID, verb, strings.TrimSpace(req.Target))
	}
	respondResult(w, res)
}

type groupStatusResponse struct {
	GroupID      string                 `json:"group_id"`
	Phase        string                 `json:"phase"`
	Day          int                    `json:"day"`
	AliveCount   int                    `json:"alive_count"`
	Winner       string                 `json:"winner,omitempty"`
	WinCondition string                 `json:"win_condition,omitempty"`
	Players      []playerStatusResponse `json:"players"`
	CreatedAt    string                 `json:"created_at"`
}

type playerStatusResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Alive    bool   `json:"alive"`
	Role     string `json:"role,omitempty"`
	Death    string `json:"death,omitempty"`
	DeathDay int    `json:"death_day,omitempty"`
}

// GetGroup handles GET /api/groups/{group_id}. Public view; living roles
// stay hidden until the game ends.
func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "group_id")
	if !validateGroupID(groupID) {
		respondError(w, http.StatusBadRequest, "invalid group_id")
		return
	}
	session, err := h.games.Get(groupID)
	if err != nil {
		respondError(w, http.StatusNotFound, "no session for this group")
		return
	}

	snap := session.Status()
	resp := groupStatusResponse{
		GroupID:    snap.GroupID,
		Phase:      string(snap.Phase),
		Day:        snap.Day,
		AliveCount: snap.AliveCount,
		CreatedAt:  snap.CreatedAt.Format(time.RFC3339),
	}
	if snap.Winner != nil {
		resp.Winner = string(snap.Winner.Winner)
		resp.WinCondition = snap.Winner.Condition
	}
	for _, p := range snap.Players {
		resp.Players = append(resp.Players, playerStatusResponse{
			ID:       p.ID,
			Name:     p.Name,
			Alive:    p.Alive,
			Role:     string(p.Role),
			Death:    string(p.Death),
			DeathDay: p.DeathDay,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

// EndGroup handles DELETE /api/groups/{group_id}. Ends the session for
// everyone; any joined player may pull the plug.
func (h *GroupHandler) EndGroup(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromRequest(r)
	if _, ok := h.sessionForRequest(w, r, claims); !ok {
		return
	}
	if err := h.games.End(chi.URLParam(r, "group_id")); err != nil {
		respondError(w, http.StatusNotFound, "no session for this group")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

// sessionForRequest resolves the session named in the URL and checks the
// token claims against it.
func (h *GroupHandler) sessionForRequest(w http.ResponseWriter, r *http.Request, claims *auth.Claims) (*werewolf.Session, bool) {
	groupID := chi.URLParam(r, "group_id")
	if !validateGroupID(groupID) {
		respondError(w, http.StatusBadRequest, "invalid group_id")
		return nil, false
	}
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	if claims.GroupID != groupID {
		respondError(w, http.StatusForbidden, "token not valid for this group")
		return nil, false
	}
	session, err := h.games.Get(groupID)
	if err != nil {
		respondError(w, http.StatusNotFound, "no session for this group")
		return nil, false
	}
	return session, true
}

type commandResponse struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
	Public  string `json:"public,omitempty"`
}

// respondResult maps an engine result to an HTTP response. Rule rejections
// get 422 with the reason code so bots can relay the message as-is.
func respondResult(w http.ResponseWriter, res werewolf.Result) {
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, commandResponse{
		Success: res.Success,
		Reason:  res.Reason,
		Message: res.Message,
		Public:  res.Public,
	})
}

package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/catudon1276/Games-Plaza/internal/httpapi/handler"
	"github.com/catudon1276/Games-Plaza/internal/ratelimit"
	"github.com/catudon1276/Games-Plaza/internal/store"
	"github.com/catudon1276/Games-Plaza/internal/websocket"
	"github.com/catudon1276/Games-Plaza/internal/werewolf"
)

// Deps carries the wired subsystems into the router. The stores may be nil
// when the server runs without a database.
type Deps struct {
	Games       *werewolf.Hub
	WSHandler   *websocket.WSHandler
	Matches     *store.MatchStore
	Events      *store.EventStore
	TokenSecret []byte
	RateLimiter ratelimit.Limiter
}

// NewRouter builds the root HTTP router with basic middleware and health
// check. Create and join are rate limited by IP; game verbs require the
// join token issued on join.
func NewRouter(deps Deps) http.Handler {
	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", handler.Healthz)

	// Per-group WebSocket (token auth, chat, commands, status)
	r.Get("/ws/groups/{group_id}", deps.WSHandler.HandleGroupWebSocket)

	rateLimitByIP := RateLimitMiddleware(limiter, RateLimitKeyByIP)
	requirePlayer := RequirePlayer(deps.TokenSecret)

	groupHandler := handler.NewGroupHandler(deps.Games, deps.TokenSecret)
	historyHandler := handler.NewHistoryHandler(deps.Matches, deps.Events)

	r.Route("/api/groups", func(r chi.Router) {
		r.Use(LimitRequestBody(DefaultMaxBodyBytes))
		r.With(rateLimitByIP).Post("/", groupHandler.CreateGroup)
		r.Get("/{group_id}", groupHandler.GetGroup)
		r.With(rateLimitByIP).Post("/{group_id}/join", groupHandler.JoinGroup)
		r.With(requirePlayer).Post("/{group_id}/start", groupHandler.StartGame)
		r.With(requirePlayer).Post("/{group_id}/commands", groupHandler.SubmitCommand)
		r.With(requirePlayer).Delete("/{group_id}", groupHandler.EndGroup)

		r.Get("/{group_id}/matches", historyHandler.ListMatches)
		r.Get("/{group_id}/events", historyHandler.ListEvents)
	})
	r.Get("/api/matches/{match_id}", historyHandler.GetMatch)

	return r
}

// DefaultRateLimiter returns an in-memory rate limiter for create/join/chat:
// 20 requests per minute per IP. For multi-instance, replace with a shared
// backend.
func DefaultRateLimiter() ratelimit.Limiter {
	return ratelimit.NewInMemory(20, time.Minute)
}

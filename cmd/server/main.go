package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/catudon1276/Games-Plaza/internal/config"
	"github.com/catudon1276/Games-Plaza/internal/database"
	"github.com/catudon1276/Games-Plaza/internal/httpapi"
	"github.com/catudon1276/Games-Plaza/internal/ratelimit"
	"github.com/catudon1276/Games-Plaza/internal/store"
	"github.com/catudon1276/Games-Plaza/internal/websocket"
	"github.com/catudon1276/Games-Plaza/internal/werewolf"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg := config.Load()

	tokenSecret := []byte(cfg.TokenSecret)
	if len(tokenSecret) == 0 {
		tokenSecret = []byte("dev-secret-change-in-production")
		log.Warn("WEREWOLF_TOKEN_SECRET not set, using dev secret")
	}

	// Match history is optional: without DATABASE_URL the games run
	// in-memory only.
	ctx := context.Background()
	var pool *pgxpool.Pool
	var matches *store.MatchStore
	var events *store.EventStore
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("database connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			log.Error("database migrate failed", "err", err)
			os.Exit(1)
		}
		matches = store.NewMatchStore(pool)
		events = store.NewEventStore(pool)
		log.Info("match history enabled")
	} else {
		log.Info("DATABASE_URL not set, running without match history")
	}

	limiter := ratelimit.NewInMemory(cfg.RateLimit, cfg.RateLimitEvery)

	// The sink needs the websocket hub, the game hub needs the sink, and
	// the message handler needs both; SetHandler closes the loop after
	// construction.
	wsHub := websocket.NewHub(log)
	sink := websocket.NewEngineSink(wsHub, matches, events, log)
	games := werewolf.NewHub(cfg.GameConfig(), sink, log)
	wsHub.SetHandler(websocket.NewMessageHandler(wsHub, games, limiter, log))
	go wsHub.Run()

	router := httpapi.NewRouter(httpapi.Deps{
		Games:       games,
		WSHandler:   websocket.NewWSHandler(wsHub, tokenSecret),
		Matches:     matches,
		Events:      events,
		TokenSecret: tokenSecret,
		RateLimiter: limiter,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("werewolf backend listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed", "err", err)
	}
	games.Close()
}

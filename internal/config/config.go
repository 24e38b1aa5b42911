package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/catudon1276/Games-Plaza/internal/werewolf"
)

// Config is the process configuration, read once at startup from the
// environment. DatabaseURL may be empty; the server then runs without
// match history.
type Config struct {
	HTTPAddr      string
	DatabaseURL   string
	MigrationsDir string
	TokenSecret   string

	RateLimit      int
	RateLimitEvery time.Duration

	DayTimeout   time.Duration
	VoteTimeout  time.Duration
	NightTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load reads the configuration from environment variables, applying
// defaults for everything optional.
func Load() Config {
	return Config{
		HTTPAddr:       getenv("WEREWOLF_HTTP_ADDR", ":8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsDir:  getenv("MIGRATIONS_DIR", "migrations"),
		TokenSecret:    os.Getenv("WEREWOLF_TOKEN_SECRET"),
		RateLimit:      getint("WEREWOLF_RATE_LIMIT", 20),
		RateLimitEvery: getdur("WEREWOLF_RATE_WINDOW", time.Minute),
		DayTimeout:     getdur("WEREWOLF_DAY_TIMEOUT", 10*time.Minute),
		VoteTimeout:    getdur("WEREWOLF_VOTE_TIMEOUT", 3*time.Minute),
		NightTimeout:   getdur("WEREWOLF_NIGHT_TIMEOUT", 5*time.Minute),
		IdleTimeout:    getdur("WEREWOLF_IDLE_TIMEOUT", 30*time.Minute),
	}
}

// GameConfig converts the process configuration into engine settings.
func (c Config) GameConfig() werewolf.Config {
	cfg := werewolf.DefaultConfig()
	cfg.DayTimeout = c.DayTimeout
	cfg.VoteTimeout = c.VoteTimeout
	cfg.NightTimeout = c.NightTimeout
	cfg.IdleTimeout = c.IdleTimeout
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

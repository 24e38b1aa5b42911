package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Match is one finished game in the history. Live sessions are never loaded
// from here; the engine owns them in memory and this table is written once,
// after the fact.
type Match struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"group_id"`
	Winner      string    `json:"winner"`
	Condition   string    `json:"condition,omitempty"`
	Days        int       `json:"days"`
	PlayerCount int       `json:"player_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// MatchPlayer is one roster entry of a finished game, role revealed.
type MatchPlayer struct {
	MatchID    string `json:"match_id"`
	PlayerID   string `json:"player_id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Survived   bool   `json:"survived"`
	DeathCause string `json:"death_cause,omitempty"`
	DeathDay   int    `json:"death_day,omitempty"`
}

// MatchRecord is the write-side shape for RecordMatch. Callers build it from
// the engine's end-of-game snapshot.
type MatchRecord struct {
	GroupID   string
	Winner    string // village | werewolf | none (aborted)
	Condition string
	Days      int
	Players   []MatchPlayerRecord
}

// MatchPlayerRecord is one roster entry in a MatchRecord.
type MatchPlayerRecord struct {
	PlayerID   string
	Name       string
	Role       string
	Survived   bool
	DeathCause string
	DeathDay   int
}

// MatchStore persists finished games.
type MatchStore struct {
	pool *pgxpool.Pool
}

// NewMatchStore creates a MatchStore backed by the given pool.
func NewMatchStore(pool *pgxpool.Pool) *MatchStore {
	return &MatchStore{pool: pool}
}

// RecordMatch inserts the match and its roster in one transaction.
func (s *MatchStore) RecordMatch(ctx context.Context, rec MatchRecord) (*Match, error) {
	if rec.GroupID == "" {
		return nil, fmt.Errorf("record match: group_id is required")
	}
	if rec.Winner == "" {
		rec.Winner = "none"
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	match := &Match{
		ID:          uuid.NewString(),
		GroupID:     rec.GroupID,
		Winner:      rec.Winner,
		Condition:   rec.Condition,
		Days:        rec.Days,
		PlayerCount: len(rec.Players),
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO matches (id, group_id, winner, win_condition, days, player_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		match.ID, match.GroupID, match.Winner, match.Condition, match.Days, match.PlayerCount,
	).Scan(&match.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert match: %w", err)
	}

	for _, p := range rec.Players {
		_, err = tx.Exec(ctx, `
			INSERT INTO match_players (match_id, player_id, name, role, survived, death_cause, death_day)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			match.ID, p.PlayerID, p.Name, p.Role, p.Survived, p.DeathCause, p.DeathDay,
		)
		if err != nil {
			return nil, fmt.Errorf("insert match player %s: %w", p.PlayerID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return match, nil
}

// ListByGroup returns the most recent matches for a group, newest first.
func (s *MatchStore) ListByGroup(ctx context.Context, groupID string, limit int) ([]Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, group_id, winner, win_condition, days, player_count, created_at
		FROM matches
		WHERE group_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		groupID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.GroupID, &m.Winner, &m.Condition, &m.Days, &m.PlayerCount, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// GetMatch returns one match with its full roster.
func (s *MatchStore) GetMatch(ctx context.Context, id string) (*Match, []MatchPlayer, error) {
	var m Match
	err := s.pool.QueryRow(ctx, `
		SELECT id, group_id, winner, win_condition, days, player_count, created_at
		FROM matches
		WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.GroupID, &m.Winner, &m.Condition, &m.Days, &m.PlayerCount, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get match: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT match_id, player_id, name, role, survived, death_cause, death_day
		FROM match_players
		WHERE match_id = $1
		ORDER BY name`,
		id,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("list match players: %w", err)
	}
	defer rows.Close()

	var players []MatchPlayer
	for rows.Next() {
		var p MatchPlayer
		if err := rows.Scan(&p.MatchID, &p.PlayerID, &p.Name, &p.Role, &p.Survived, &p.DeathCause, &p.DeathDay); err != nil {
			return nil, nil, fmt.Errorf("scan match player: %w", err)
		}
		players = append(players, p)
	}
	return &m, players, rows.Err()
}

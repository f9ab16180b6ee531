// Package postgres stores game snapshots as JSONB documents keyed by the
// inline message id. Player ids are copied into columns for aggregate queries.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/tictactoe-bot/core/logger"
	"github.com/m3rciful/tictactoe-bot/internal/game"
	"github.com/m3rciful/tictactoe-bot/internal/storage"
)

const component = "store.games"

const (
	insertGame = `
INSERT INTO games (id, status, player_x_id, player_o_id, doc)
VALUES (:id, :status, :player_x_id, :player_o_id, :doc)
ON CONFLICT (id) DO NOTHING`

	upsertGame = `
INSERT INTO games (id, status, player_x_id, player_o_id, doc)
VALUES (:id, :status, :player_x_id, :player_o_id, :doc)
ON CONFLICT (id) DO UPDATE SET
    status      = EXCLUDED.status,
    player_x_id = EXCLUDED.player_x_id,
    player_o_id = EXCLUDED.player_o_id,
    doc         = EXCLUDED.doc,
    updated_at  = now()`

	selectGame = `SELECT doc FROM games WHERE id = $1`

	selectStats = `
SELECT
    COUNT(*) FILTER (WHERE status <= $1) AS in_progress,
    COUNT(*)                             AS total,
    (SELECT COUNT(DISTINCT p) FROM (
        SELECT player_x_id AS p FROM games
        UNION
        SELECT player_o_id FROM games
    ) ids WHERE p IS NOT NULL)           AS players
FROM games`

	deleteFinished = `DELETE FROM games WHERE status >= $1 AND updated_at < $2`
)

type row struct {
	ID        string        `db:"id"`
	Status    int           `db:"status"`
	PlayerXID sql.NullInt64 `db:"player_x_id"`
	PlayerOID sql.NullInt64 `db:"player_o_id"`
	Doc       []byte        `db:"doc"`
}

func toRow(s *game.State) (row, error) {
	doc, err := json.Marshal(s)
	if err != nil {
		return row{}, fmt.Errorf("encode game %s: %w", s.ID, err)
	}
	r := row{ID: s.ID, Status: int(s.Status), Doc: doc}
	if s.PlayerX != nil {
		r.PlayerXID = sql.NullInt64{Int64: s.PlayerX.ID, Valid: true}
	}
	if s.PlayerO != nil {
		r.PlayerOID = sql.NullInt64{Int64: s.PlayerO.ID, Valid: true}
	}
	return r, nil
}

// Store persists games in the games table.
type Store struct {
	db *sqlx.DB
}

// New wraps an open connection pool.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Create inserts s; an existing row with the same id is left untouched.
func (p *Store) Create(ctx context.Context, s *game.State) error {
	r, err := toRow(s)
	if err != nil {
		return err
	}
	start := time.Now()
	res, err := p.db.NamedExecContext(ctx, insertGame, r)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", s.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		logger.Debug(ctx, component, "game.create",
			slog.String("status", "skip"),
			slog.String("game_id", s.ID),
			slog.String("reason", "exists"),
		)
		return nil
	}
	logger.Debug(ctx, component, "game.create",
		slog.String("status", "ok"),
		slog.String("game_id", s.ID),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// Load fetches and decodes the game document.
func (p *Store) Load(ctx context.Context, id string) (*game.State, error) {
	var doc []byte
	if err := p.db.GetContext(ctx, &doc, selectGame, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("select game %s: %w", id, err)
	}
	var s game.State
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	return &s, nil
}

// Save writes the full snapshot.
func (p *Store) Save(ctx context.Context, s *game.State) error {
	r, err := toRow(s)
	if err != nil {
		return err
	}
	if _, err := p.db.NamedExecContext(ctx, upsertGame, r); err != nil {
		return fmt.Errorf("save game %s: %w", s.ID, err)
	}
	return nil
}

// Stats aggregates the games table.
func (p *Store) Stats(ctx context.Context) (storage.Stats, error) {
	var st storage.Stats
	if err := p.db.GetContext(ctx, &st, selectStats, int(game.WaitingForPlayer)); err != nil {
		return storage.Stats{}, fmt.Errorf("game stats: %w", err)
	}
	return st, nil
}

// PurgeFinished deletes completed or drawn games not updated since before.
func (p *Store) PurgeFinished(ctx context.Context, before time.Time) (int64, error) {
	res, err := p.db.ExecContext(ctx, deleteFinished, int(game.Completed), before)
	if err != nil {
		return 0, fmt.Errorf("purge games: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge games: %w", err)
	}
	return n, nil
}

// Package storage holds what the game stores share: the not-found sentinel,
// aggregate stats and snapshot copying.
package storage

import (
	"errors"

	"github.com/m3rciful/tictactoe-bot/internal/game"
)

// ErrNotFound is returned by Load when no game has the requested id.
var ErrNotFound = errors.New("storage: game not found")

// Stats summarizes stored games.
type Stats struct {
	InProgress int64 `db:"in_progress"`
	Total      int64 `db:"total"`
	Players    int64 `db:"players"`
}

// Clone returns a deep copy of s so stores never share pointers with callers.
func Clone(s *game.State) *game.State {
	if s == nil {
		return nil
	}
	out := *s
	out.PlayerX = clonePlayer(s.PlayerX)
	out.PlayerO = clonePlayer(s.PlayerO)
	out.Winner = clonePlayer(s.Winner)
	return &out
}

func clonePlayer(p *game.Player) *game.Player {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

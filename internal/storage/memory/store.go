// Package memory keeps games in process memory. State is lost on restart.
package memory

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/m3rciful/tictactoe-bot/internal/game"
	"github.com/m3rciful/tictactoe-bot/internal/storage"
)

type entry struct {
	state     *game.State
	updatedAt time.Time
}

// Store is a map-backed game store safe for concurrent use.
type Store struct {
	games *xsync.MapOf[string, entry]
	now   func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		games: xsync.NewMapOf[string, entry](),
		now:   time.Now,
	}
}

// Create stores s unless a game with the same id exists.
func (m *Store) Create(_ context.Context, s *game.State) error {
	m.games.LoadOrStore(s.ID, entry{state: storage.Clone(s), updatedAt: m.now()})
	return nil
}

// Load returns a copy of the game or storage.ErrNotFound.
func (m *Store) Load(_ context.Context, id string) (*game.State, error) {
	e, ok := m.games.Load(id)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return storage.Clone(e.state), nil
}

// Save replaces the stored snapshot.
func (m *Store) Save(_ context.Context, s *game.State) error {
	m.games.Store(s.ID, entry{state: storage.Clone(s), updatedAt: m.now()})
	return nil
}

// Stats counts running games, all games and distinct players.
func (m *Store) Stats(_ context.Context) (storage.Stats, error) {
	var st storage.Stats
	players := make(map[int64]struct{})
	m.games.Range(func(_ string, e entry) bool {
		st.Total++
		if e.state.Status <= game.WaitingForPlayer {
			st.InProgress++
		}
		for _, p := range []*game.Player{e.state.PlayerX, e.state.PlayerO} {
			if p != nil {
				players[p.ID] = struct{}{}
			}
		}
		return true
	})
	st.Players = int64(len(players))
	return st, nil
}

// PurgeFinished drops completed or drawn games last saved before cutoff.
func (m *Store) PurgeFinished(_ context.Context, before time.Time) (int64, error) {
	var n int64
	m.games.Range(func(id string, e entry) bool {
		if e.state.Status.Terminal() && e.updatedAt.Before(before) {
			m.games.Delete(id)
			n++
		}
		return true
	})
	return n, nil
}

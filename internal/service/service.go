// Package service runs button presses through the game rules against stored
// games and hands the resulting intents back to the transport.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/m3rciful/tictactoe-bot/core/logger"
	"github.com/m3rciful/tictactoe-bot/internal/game"
	"github.com/m3rciful/tictactoe-bot/internal/metrics"
	"github.com/m3rciful/tictactoe-bot/internal/storage"
)

const component = "service.games"

// Store persists game snapshots. Load returns ErrGameNotFound for unknown ids.
type Store interface {
	Create(ctx context.Context, s *game.State) error
	Load(ctx context.Context, id string) (*game.State, error)
	Save(ctx context.Context, s *game.State) error
	Stats(ctx context.Context) (storage.Stats, error)
	PurgeFinished(ctx context.Context, before time.Time) (int64, error)
}

// Metrics receives game counters.
type Metrics interface {
	GameCreated()
	EventHandled(outcome string)
	GameEnded(result string)
}

// Service serializes events per game id within this process.
type Service struct {
	store   Store
	metrics Metrics
	locks   *xsync.MapOf[string, *sync.Mutex]
	now     func() time.Time
}

// New builds a Service. A nil m disables metrics.
func New(store Store, m Metrics) *Service {
	if m == nil {
		m = (*metrics.Recorder)(nil)
	}
	return &Service{
		store:   store,
		metrics: m,
		locks:   xsync.NewMapOf[string, *sync.Mutex](),
		now:     time.Now,
	}
}

// CreateGame stores a fresh round under id. An existing round is kept.
func (s *Service) CreateGame(ctx context.Context, id string) error {
	if err := s.store.Create(ctx, game.New(id)); err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	s.metrics.GameCreated()
	logger.Info(ctx, component, "game.created",
		slog.String("status", "ok"),
		slog.String("game_id", id),
	)
	return nil
}

// Handle applies token pressed by requester to the game. Rule violations come
// back as acknowledge intents, not errors.
func (s *Service) Handle(ctx context.Context, gameID, eventID string, requester game.Player, token string) ([]game.Intent, error) {
	in := game.ParseInput(token)
	if !game.Valid(in) {
		logger.Debug(ctx, component, "game.event",
			slog.String("status", "skip"),
			slog.String("game_id", gameID),
			slog.String("reason", "invalid_input"),
		)
		return nil, fmt.Errorf("%w: %q", ErrInvalidInput, token)
	}

	start := time.Now()
	mu, _ := s.locks.LoadOrCompute(gameID, func() *sync.Mutex { return &sync.Mutex{} })
	mu.Lock()
	defer mu.Unlock()

	st, err := s.store.Load(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", gameID, err)
	}

	res := game.Process(st, game.Event{ID: eventID, Requester: requester, Input: in})
	if res.Changed {
		if err := s.store.Save(ctx, st); err != nil {
			return nil, fmt.Errorf("save game %s: %w", gameID, err)
		}
	}
	if st.Status.Terminal() {
		// Terminal games never change again, so their lock is no longer needed.
		s.locks.Delete(gameID)
	}

	s.metrics.EventHandled(string(res.Outcome))
	switch res.Outcome {
	case game.OutcomeWon:
		s.metrics.GameEnded(metrics.ResultWon)
	case game.OutcomeDraw:
		s.metrics.GameEnded(metrics.ResultDraw)
	}

	level := slog.LevelInfo
	if !res.Outcome.Accepted() {
		level = slog.LevelDebug
	}
	logger.Event(ctx, component, level, "game.event",
		slog.String("status", "ok"),
		slog.String("game_id", gameID),
		slog.String("result", string(res.Outcome)),
		slog.String("game_status", st.Status.String()),
		slog.Int("turn", st.Turn),
		slog.Int("intents", len(res.Intents)),
		slog.Duration("duration", logger.Took(start)),
	)
	return res.Intents, nil
}

// Stats reports running games, all games and distinct players.
func (s *Service) Stats(ctx context.Context) (storage.Stats, error) {
	st, err := s.store.Stats(ctx)
	if err != nil {
		return storage.Stats{}, fmt.Errorf("game stats: %w", err)
	}
	return st, nil
}

// Purge removes finished rounds untouched for longer than olderThan.
func (s *Service) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.store.PurgeFinished(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("purge games: %w", err)
	}
	logger.Info(ctx, component, "game.purge",
		slog.String("status", "ok"),
		slog.Int64("deleted", n),
		slog.Duration("older_than", olderThan),
	)
	return n, nil
}

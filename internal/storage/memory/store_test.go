package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m3rciful/tictactoe-bot/internal/game"
	"github.com/m3rciful/tictactoe-bot/internal/storage"
)

func TestLoadMissing(t *testing.T) {
	s := New()
	if _, err := s.Load(context.Background(), "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateKeepsExisting(t *testing.T) {
	ctx := context.Background()
	s := New()
	g := game.New("g1")
	g.PlayerX = &game.Player{ID: 7}
	if err := s.Create(ctx, g); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(ctx, game.New("g1")); err != nil {
		t.Fatalf("second Create: %v", err)
	}
	got, err := s.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.PlayerX == nil || got.PlayerX.ID != 7 {
		t.Fatal("duplicate create replaced the stored game")
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	g := game.New("g1")
	g.PlayerX = &game.Player{ID: 1, Name: "A"}
	_ = s.Save(ctx, g)

	g.PlayerX.Name = "changed"
	g.Board[0] = game.X

	got, _ := s.Load(ctx, "g1")
	if got.PlayerX.Name != "A" || got.Board[0] != game.Empty {
		t.Fatalf("store shares memory with caller: %+v", got)
	}
	got.PlayerX.Name = "again"
	again, _ := s.Load(ctx, "g1")
	if again.PlayerX.Name != "A" {
		t.Fatal("loaded snapshot aliases stored one")
	}
}

func TestStatsAndPurge(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	waiting := game.New("waiting")
	waiting.PlayerX = &game.Player{ID: 1}

	running := game.New("running")
	running.Status = game.WaitingForPlayer
	running.PlayerX = &game.Player{ID: 1}
	running.PlayerO = &game.Player{ID: 2}

	done := game.New("done")
	done.Status = game.Completed
	done.PlayerX = &game.Player{ID: 3}
	done.PlayerO = &game.Player{ID: 2}

	for _, g := range []*game.State{waiting, running, done} {
		_ = s.Save(ctx, g)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st != (storage.Stats{InProgress: 2, Total: 3, Players: 3}) {
		t.Fatalf("stats = %+v", st)
	}

	if n, _ := s.PurgeFinished(ctx, now); n != 0 {
		t.Fatalf("purged %d games saved at cutoff", n)
	}
	n, err := s.PurgeFinished(ctx, now.Add(time.Minute))
	if err != nil || n != 1 {
		t.Fatalf("PurgeFinished = %d, %v", n, err)
	}
	if _, err := s.Load(ctx, "done"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatal("finished game survived purge")
	}
	if _, err := s.Load(ctx, "running"); err != nil {
		t.Fatal("running game was purged")
	}
}

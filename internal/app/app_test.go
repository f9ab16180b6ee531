package app

import (
	"context"
	"testing"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/tictactoe-bot/core/config"
	coretelegram "github.com/m3rciful/tictactoe-bot/core/telegram"
)

func newMemoryApp(t *testing.T) *App {
	t.Helper()
	cfg := &Config{
		Storage: StorageConfig{Driver: DriverMemory},
		Games:   GamesConfig{RateURL: "https://example.com/rate"},
	}
	cfg.Telegram.Token = "123:abc"
	cfg.Telegram.AdminID = 42
	cfg.RateLimit.IntervalMS = 500
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	a, err := New(cfg, Options{LoggerInit: func(*coreconfig.Config) error { return nil }})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestNewMemoryStorage(t *testing.T) {
	a := newMemoryApp(t)
	if a.db != nil {
		t.Fatal("memory driver must not open a database")
	}
	if err := a.games.CreateGame(context.Background(), "inline-1"); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	st, err := a.games.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.InProgress != 1 {
		t.Fatalf("in progress = %d, want 1", st.InProgress)
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(nil, Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestTelegramRunOptions(t *testing.T) {
	a := newMemoryApp(t)
	opts, err := a.TelegramRunOptions()
	if err != nil {
		t.Fatalf("TelegramRunOptions: %v", err)
	}
	if opts.Config == nil || opts.Registry == nil || opts.OnStart == nil || opts.OnStop == nil {
		t.Fatalf("incomplete run options: %+v", opts)
	}

	endpoints := map[string]bool{}
	for _, r := range opts.Routes {
		endpoints[r.Endpoint] = true
	}
	for _, want := range []string{"/start", "/help", "/status", "/rate", "/purge", tele.OnCallback, tele.OnText, tele.OnQuery, tele.OnInlineResult} {
		if !endpoints[want] {
			t.Errorf("missing route %v", want)
		}
	}

	if _, ok := opts.Registry.Callback("ttt"); !ok {
		t.Fatal("game callback not registered")
	}

	names := map[string]bool{}
	for _, mw := range opts.Middlewares {
		names[mw.Name] = true
	}
	for _, want := range []string{"recover", "rate_limit", "logger", "replies"} {
		if !names[want] {
			t.Errorf("missing middleware %q", want)
		}
	}

	if err := opts.OnStop(context.Background(), coretelegram.Runtime{}); err != nil {
		t.Fatalf("OnStop: %v", err)
	}
}

package bootstrap

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/tictactoe-bot/core/config"
	coredatabase "github.com/m3rciful/tictactoe-bot/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunRequiresConfig(t *testing.T) {
	if _, err := Run(Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestRunSkipDatabase(t *testing.T) {
	connected := false
	res, err := Run(Options{
		Config:       &coreconfig.Config{},
		SkipDatabase: true,
		LoggerInit:   noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			connected = true
			return nil, errors.New("unexpected")
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if connected || res.DB != nil {
		t.Fatal("database should not be touched")
	}
}

func TestRunConnectFailure(t *testing.T) {
	boom := errors.New("boom")
	migrated := false
	_, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect:    func(coredatabase.Config) (*sqlx.DB, error) { return nil, boom },
		Migrate:    func(coredatabase.Config) error { migrated = true; return nil },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if migrated {
		t.Fatal("migrations ran after failed connect")
	}
}

func TestRunLoggerFailure(t *testing.T) {
	boom := errors.New("logger")
	_, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped logger error", err)
	}
}

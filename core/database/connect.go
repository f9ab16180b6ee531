package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/tictactoe-bot/core/logger"
)

const (
	component = "db"

	connectTimeout = 5 * time.Second
	// readyTimeout bounds how long startup waits for the server to accept connections.
	readyTimeout = 30 * time.Second
	readyBackoff = 2 * time.Second
)

// Connect opens a pooled connection to PostgreSQL. It retries until the
// server accepts connections or readyTimeout elapses, so the bot can start
// alongside its database container.
func Connect(cfg Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()
	return connect(ctx, cfg)
}

func connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	start := time.Now()
	attrs := []slog.Attr{
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
	}
	for attempt := 1; ; attempt++ {
		db, err := dial(ctx, cfg.DSN())
		if err == nil {
			if cfg.MaxConnections > 0 {
				db.SetMaxOpenConns(cfg.MaxConnections)
				db.SetMaxIdleConns(cfg.MaxConnections)
			}
			logger.Info(ctx, component, "db.connect", append(attrs,
				slog.String("status", "ok"),
				slog.Int("attempts", attempt),
				slog.Int("pool_open", cfg.MaxConnections),
				slog.Duration("duration", logger.Took(start)),
			)...)
			return db, nil
		}

		timer := time.NewTimer(readyBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Error(ctx, component, "db.connect", append(attrs,
				slog.String("status", "fail"),
				slog.Int("attempts", attempt),
				slog.Duration("duration", logger.Took(start)),
				slog.String("err", err.Error()),
			)...)
			return nil, fmt.Errorf("db connect: %w", err)
		case <-timer.C:
		}
		logger.Debug(ctx, component, "db.connect", append(attrs,
			slog.String("status", "retry"),
			slog.Int("attempts", attempt),
			slog.String("err", err.Error()),
		)...)
	}
}

func dial(ctx context.Context, dsn string) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	// ConnectContext pings, so a returned handle is usable.
	return sqlx.ConnectContext(ctx, "postgres", dsn)
}

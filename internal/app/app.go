// Package app assembles the tic-tac-toe bot from configuration: storage,
// game service, metrics and Telegram routes.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/tictactoe-bot/core/bootstrap"
	coreconfig "github.com/m3rciful/tictactoe-bot/core/config"
	coredatabase "github.com/m3rciful/tictactoe-bot/core/database"
	"github.com/m3rciful/tictactoe-bot/core/logger"
	coretelegram "github.com/m3rciful/tictactoe-bot/core/telegram"
	"github.com/m3rciful/tictactoe-bot/core/telegram/router"
	"github.com/m3rciful/tictactoe-bot/internal/bot"
	"github.com/m3rciful/tictactoe-bot/internal/metrics"
	"github.com/m3rciful/tictactoe-bot/internal/service"
	"github.com/m3rciful/tictactoe-bot/internal/storage/memory"
	"github.com/m3rciful/tictactoe-bot/internal/storage/postgres"
)

// App holds the wired bot.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	games    *service.Service
	metrics  *metrics.Recorder
	handlers *bot.Handlers
}

// Options overrides bootstrap steps, mainly for tests.
type Options struct {
	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
}

// New initializes logging and storage and builds the game service.
func New(cfg *Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	res, err := bootstrap.Run(bootstrap.Options{
		Config:       &cfg.Config,
		Database:     cfg.Database,
		SkipDatabase: cfg.Storage.Driver == DriverMemory,
		LoggerInit:   opts.LoggerInit,
		Connect:      opts.Connect,
		Migrate:      opts.Migrate,
	})
	if err != nil {
		return nil, err
	}

	var store service.Store
	switch cfg.Storage.Driver {
	case DriverMemory:
		store = memory.New()
	default:
		store = postgres.New(res.DB)
	}

	rec := metrics.New()
	games := service.New(store, rec)
	logger.Info(logger.Background(), "app", "wire",
		slog.String("status", "ok"),
		slog.String("storage", cfg.Storage.Driver),
		slog.Bool("metrics", cfg.Metrics.Listen != ""),
	)
	return &App{
		cfg:     cfg,
		db:      res.DB,
		games:   games,
		metrics: rec,
		handlers: bot.New(games, bot.Options{
			PurgeAfter: cfg.Games.PurgeAfter,
			RateURL:    cfg.Games.RateURL,
		}),
	}, nil
}

// TelegramRunOptions registers the bot routes and lifecycle hooks.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	if err := a.handlers.Register(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}

	routes := router.Commands(reg, a.cfg.Telegram.AdminID, nil)
	routes = append(routes, router.Callbacks(reg))
	routes = append(routes, router.Text(reg, a.handlers)...)
	routes = append(routes, router.Inline(a.handlers.Query, a.handlers.InlineResult)...)

	return coretelegram.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Config, a.handlers.RateLimited),
		Routes:      routes,
		OnStart:     a.start,
		OnStop:      a.stop,
	}, nil
}

func (a *App) start(ctx context.Context, _ coretelegram.Runtime) error {
	if addr := a.cfg.Metrics.Listen; addr != "" {
		go func() {
			if err := a.metrics.Serve(ctx, addr); err != nil {
				logger.Error(ctx, "metrics", "metrics.serve",
					slog.String("status", "fail"),
					slog.String("err", err.Error()),
				)
			}
		}()
	}
	return nil
}

func (a *App) stop(context.Context, coretelegram.Runtime) error {
	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("app: close database: %w", err)
	}
	return nil
}

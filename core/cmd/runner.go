// Package cmd runs a Telegram bot binary: configuration, bootstrap,
// signal handling and the polling loop.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreconfig "github.com/m3rciful/tictactoe-bot/core/config"
	"github.com/m3rciful/tictactoe-bot/core/logger"
	coretelegram "github.com/m3rciful/tictactoe-bot/core/telegram"
)

const defaultConfigEnv = "CONFIG_PATH"

// ConfigCarrier exposes the embedded core configuration.
type ConfigCarrier interface {
	CoreConfig() *coreconfig.Config
}

// TelegramApp builds the options for telegram.Run.
type TelegramApp interface {
	TelegramRunOptions() (coretelegram.RunOptions, error)
}

// Options describe how a binary loads its configuration C and builds the bot.
type Options[C ConfigCarrier] struct {
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (C, error)
	Bootstrap  func(cfg C) (TelegramApp, error)

	// Overridable for tests.
	ShutdownLogger func() error
	RunTelegram    func(ctx context.Context, opts coretelegram.RunOptions) error
}

// Run loads configuration, bootstraps the app and blocks until SIGINT or
// SIGTERM stops the bot.
func Run[C ConfigCarrier](opts Options[C]) error {
	if opts.LoadConfig == nil || opts.Bootstrap == nil {
		return errors.New("cmd: LoadConfig and Bootstrap are required")
	}
	env := opts.ConfigEnvVar
	if env == "" {
		env = defaultConfigEnv
	}
	path := os.Getenv(env)
	if path == "" {
		path = opts.DefaultConfigPath
	}
	if path == "" {
		return fmt.Errorf("cmd: config path not set; export %s", env)
	}

	log.Printf("loading config: %s", path)
	cfg, err := opts.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("cmd: load config: %w", err)
	}
	if cfg.CoreConfig() == nil {
		return errors.New("cmd: config carries no core section")
	}

	started := time.Now()
	app, err := opts.Bootstrap(cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap: %w", err)
	}
	shutdown := opts.ShutdownLogger
	if shutdown == nil {
		shutdown = logger.Shutdown
	}
	defer func() {
		if err := shutdown(); err != nil {
			log.Printf("logger shutdown: %v", err)
		}
	}()

	runOpts, err := app.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: telegram options: %w", err)
	}
	wrapLifecycle(&runOpts, started)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	run := opts.RunTelegram
	if run == nil {
		run = coretelegram.Run
	}
	if err := run(ctx, runOpts); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// wrapLifecycle adds ready and shutdown log lines around the app hooks.
func wrapLifecycle(opts *coretelegram.RunOptions, started time.Time) {
	onStart, onStop := opts.OnStart, opts.OnStop
	opts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if onStart != nil {
			if err := onStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.Info(ctx, "app", "ready",
			slog.String("status", "ok"),
			slog.Duration("startup_duration", time.Since(started)),
		)
		return nil
	}
	opts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		logger.Info(ctx, "app", "shutdown")
		if onStop != nil {
			return onStop(ctx, rt)
		}
		return nil
	}
}

// Package telegram runs a telebot bot from a Registry, a middleware chain
// and a set of routes until its context ends.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/tictactoe-bot/core/config"
	"github.com/m3rciful/tictactoe-bot/core/logger"
	"github.com/m3rciful/tictactoe-bot/core/telegram/helpers"
	"github.com/m3rciful/tictactoe-bot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

const component = "tg"

// Middleware is a named global middleware installed with bot.Use.
type Middleware struct {
	Name string
	Use  tele.MiddlewareFunc
}

// Route binds a handler to a telebot endpoint: a command such as "/start" or
// one of the tele.On* constants.
type Route struct {
	Endpoint string
	Handler  tele.HandlerFunc
}

// RunOptions describes the bot Run starts.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	Outbox sender.Options

	Middlewares []Middleware
	Routes      []Route

	// KeepWebhook skips removing a leftover webhook before long polling.
	KeepWebhook bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime is what lifecycle hooks get to work with.
type Runtime struct {
	Bot      *tele.Bot
	Outbox   *sender.Outbox
	Registry *Registry
}

// Run builds the bot, installs opts and serves updates until ctx is done.
// A cancelled context is a clean shutdown and returns nil.
func Run(ctx context.Context, opts RunOptions) error {
	if opts.Config == nil {
		return errors.New("telegram: nil config")
	}
	cfg := opts.Config
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	start := time.Now()
	poller := NewPoller(cfg)
	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  poller,
		Client:  NewHTTPClient(),
		OnError: logHandlerError,
	})
	if err != nil {
		return fmt.Errorf("telegram: new bot: %w", err)
	}
	logMode(ctx, cfg, poller, logger.Took(start))

	if cfg.Telegram.RunMode == coreconfig.RunModeLongpoll && !opts.KeepWebhook {
		if err := bot.RemoveWebhook(false); err != nil {
			logger.Warn(ctx, component, "webhook.remove", slog.String("status", "fail"), slog.String("err", sender.Redact(err)))
		}
	}

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, r := range opts.Routes {
		if r.Endpoint != "" && r.Handler != nil {
			bot.Handle(r.Endpoint, r.Handler)
		}
	}
	publishMenu(bot, reg)

	outbox := sender.New(opts.Outbox)
	helpers.SetOutbox(outbox)
	defer func() {
		helpers.SetOutbox(nil)
		outbox.Close()
	}()

	rt := Runtime{Bot: bot, Outbox: outbox, Registry: reg}
	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		bot.Start()
	}()
	select {
	case <-ctx.Done():
		bot.Stop()
		<-done
	case <-done:
	}

	if opts.OnStop != nil {
		return opts.OnStop(context.WithoutCancel(ctx), rt)
	}
	return nil
}

func logMode(ctx context.Context, cfg *coreconfig.Config, p tele.Poller, took time.Duration) {
	attrs := []slog.Attr{slog.String("status", "ok"), slog.Duration("duration", took)}
	switch p := p.(type) {
	case *tele.Webhook:
		attrs = append(attrs,
			slog.String("mode", coreconfig.RunModeWebhook),
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
		)
	case *tele.LongPoller:
		attrs = append(attrs,
			slog.String("mode", cfg.Telegram.RunMode),
			slog.Duration("poll_timeout", p.Timeout),
		)
	}
	logger.Info(ctx, component, "bot.mode", attrs...)
}

// logHandlerError reports errors that handlers return to telebot.
func logHandlerError(err error, c tele.Context) {
	ctx := context.Background()
	if c != nil {
		ctx = helpers.Context(c)
	}
	logger.Error(ctx, component, "handler.error",
		slog.String("status", "fail"),
		slog.String("err", logger.SanitizeLimit(sender.Redact(err), 256)),
		slog.String("err_code", sender.Classify(err)),
	)
}

// Package router turns a telegram.Registry into telebot routes. Every route
// logs one handler.handled summary line per update.
package router

import (
	"cmp"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/tictactoe-bot/core/logger"
	tg "github.com/m3rciful/tictactoe-bot/core/telegram"
	"github.com/m3rciful/tictactoe-bot/core/telegram/callbacks"
	"github.com/m3rciful/tictactoe-bot/core/telegram/helpers"
	"github.com/m3rciful/tictactoe-bot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Fallbacks answers updates that match no command or callback key.
type Fallbacks interface {
	UnknownText() tele.HandlerFunc
	UnknownDocument() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}

// Commands routes every registered command. AdminOnly commands are gated by
// middleware.AdminOnly with adminID.
func Commands(reg *tg.Registry, adminID int64, onReject tele.HandlerFunc) []tg.Route {
	names := reg.Commands()
	routes := make([]tg.Route, 0, len(names))
	gate := middleware.AdminOnly(middleware.AdminOptions{AdminID: adminID, OnReject: onReject})
	for _, name := range names {
		cmd, _ := reg.Command(name)
		h := summarize(handlerName(name), cmd.Handler)
		if cmd.AdminOnly {
			h = gate(h)
		}
		routes = append(routes, tg.Route{Endpoint: name, Handler: h})
	}
	logger.Info(logger.Background(), "tg.wire", "routes",
		slog.String("status", "ok"),
		slog.Int("commands", len(names)),
		slog.Int("callbacks", len(reg.Callbacks())),
	)
	return routes
}

// Callbacks routes all button presses by their unique key.
func Callbacks(reg *tg.Registry) tg.Route {
	return tg.Route{Endpoint: tele.OnCallback, Handler: func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		key := callbacks.CallbackKey(c)
		name := "callback." + handlerName(key)
		if h, ok := reg.Callback(key); ok {
			return run(c, name, "", h, slog.String("cb_key", key))
		}
		fallback := reg.CallbackNotFound()
		if fallback == nil {
			fallback = func(c tele.Context) error { return c.Respond() }
		}
		return run(c, name, "skip", fallback, slog.String("cb_key", key), slog.String("cause", "not_found"))
	}}
}

// Text routes plain text and documents. Text naming a public command runs it;
// anything else goes to the registry's text fallback.
func Text(reg *tg.Registry, fb Fallbacks) []tg.Route {
	text := func(c tele.Context) error {
		if cmd, ok := reg.Command(strings.TrimSpace(c.Text())); ok && !cmd.AdminOnly {
			return run(c, handlerName(c.Text()), "", cmd.Handler)
		}
		if h := reg.TextFallback(); h != nil {
			return run(c, "fallback", "", h)
		}
		return run(c, "unknown_text", "", fb.UnknownText())
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: text},
		{Endpoint: tele.OnDocument, Handler: summarize("unexpected_document", fb.UnknownDocument())},
	}
}

// Inline routes inline queries and chosen inline results. Nil handlers are
// left unrouted.
func Inline(query, result tele.HandlerFunc) []tg.Route {
	var routes []tg.Route
	if query != nil {
		routes = append(routes, tg.Route{Endpoint: tele.OnQuery, Handler: summarize("inline.query", query)})
	}
	if result != nil {
		routes = append(routes, tg.Route{Endpoint: tele.OnInlineResult, Handler: summarize("inline.result", result)})
	}
	return routes
}

func handlerName(name string) string {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	if name == "" {
		return "unknown"
	}
	return strings.ReplaceAll(name, " ", "_")
}

func summarize(name string, h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error { return run(c, name, "", h) }
}

// run calls h and logs its summary. A non-empty status overrides the one
// derived from the error.
func run(c tele.Context, name, status string, h tele.HandlerFunc, extra ...slog.Attr) error {
	start := time.Now()
	ctx := helpers.WithHandler(c, name)
	var err error
	if h != nil {
		err = h(c)
	} else if status == "" {
		status = "skip"
	}

	outcome := "ok"
	if err != nil {
		outcome = "fail"
	}
	replies := middleware.RepliesOf(c)
	attrs := append([]slog.Attr{
		slog.String("status", cmp.Or(status, outcome)),
		slog.String("outcome", outcome),
		slog.Int("messages", replies.Messages),
		slog.Bool("kb", replies.Keyboard),
		slog.Duration("duration", logger.Took(start)),
	}, extra...)
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errCode(err)),
		)
	}
	logger.Info(ctx, "tg", "handler.handled", attrs...)
	return err
}

// Package middleware holds the tele.MiddlewareFunc chain shared by bots.
package middleware

import (
	"log/slog"

	"github.com/m3rciful/tictactoe-bot/core/logger"
	"github.com/m3rciful/tictactoe-bot/core/telegram/callbacks"
	"github.com/m3rciful/tictactoe-bot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Logger attaches the update's logging context to c and writes one sampled
// update.received line. Applying it twice to the same update is a no-op.
func Logger(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if _, ok := helpers.Stored(c); ok {
			return next(c)
		}
		ctx := helpers.Context(c)
		if logger.ShouldSampleDebug() {
			logger.Debug(ctx, "tg", "update.received", updateAttrs(c)...)
		}
		return next(c)
	}
}

func updateAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{slog.String("status", "ok")}
	if ch := c.Chat(); ch != nil {
		attrs = append(attrs, slog.String("chat_type", string(ch.Type)))
	}
	if u := c.Sender(); u != nil && u.Username != "" {
		attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
	}
	upd := c.Update()
	switch {
	case upd.Callback != nil:
		key, payload := callbacks.Parse(upd.Callback)
		attrs = append(attrs,
			slog.String("cb_key", logger.SanitizeLimit(key, 64)),
			slog.String("payload", logger.SanitizeLimit(payload, 128)),
			slog.String("game_id", upd.Callback.MessageID),
		)
	case upd.Query != nil:
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(upd.Query.Text, 128)))
	case upd.InlineResult != nil:
		attrs = append(attrs, slog.String("game_id", upd.InlineResult.MessageID))
	case upd.Message != nil:
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(upd.Message.Text, 128)))
	}
	return attrs
}

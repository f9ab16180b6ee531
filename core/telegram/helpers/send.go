package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/tictactoe-bot/core/logger"
	"github.com/m3rciful/tictactoe-bot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var outbox atomic.Pointer[sender.Outbox]

// SetOutbox routes SendText and SendMD through o. With nil they send inline.
func SetOutbox(o *sender.Outbox) {
	outbox.Store(o)
}

func send(c tele.Context, action string, fn func() error) error {
	o := outbox.Load()
	if o == nil {
		return fn()
	}
	ctx := Context(c)
	err := o.Enqueue(ctx, action, fn)
	if errors.Is(err, sender.ErrFull) || errors.Is(err, sender.ErrClosed) {
		logger.Warn(ctx, "tg.sender", "send.inline",
			slog.String("action", action),
			slog.String("cause", err.Error()),
		)
		return fn()
	}
	return err
}

// SendText sends plain text to the chat of the update.
func SendText(c tele.Context, text string, opts ...any) error {
	return send(c, "send.text", func() error { return c.Send(text, opts...) })
}

// SendMD sends Markdown text to the chat of the update.
func SendMD(c tele.Context, text string, opts ...any) error {
	return SendText(c, text, append([]any{tele.ModeMarkdown}, opts...)...)
}

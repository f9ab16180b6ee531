// Package helpers bridges tele.Context to the logging context and the
// outbound sender.
package helpers

import (
	"context"

	"github.com/m3rciful/tictactoe-bot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const ctxKey = "log.ctx"

// Stored returns the context saved on c by Store, if any.
func Stored(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(ctxKey).(context.Context)
	return ctx, ok
}

func Store(c tele.Context, ctx context.Context) {
	if c != nil && ctx != nil {
		c.Set(ctxKey, ctx)
	}
}

// Context returns the logging context of the update behind c, building and
// storing it on first use.
func Context(c tele.Context) context.Context {
	if ctx, ok := Stored(c); ok {
		return ctx
	}
	if c == nil {
		return context.Background()
	}
	var userID, chatID int64
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		chatID = ch.ID
	}
	updateID := c.Update().ID
	ctx := logger.WithMeta(context.Background(), logger.Meta{
		RID:      logger.BuildRID(updateID, chatID, userID),
		UpdateID: updateID,
		UserID:   userID,
		ChatID:   chatID,
	})
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	Store(c, ctx)
	return ctx
}

// WithHandler tags the update context with the handler serving it.
func WithHandler(c tele.Context, name string) context.Context {
	ctx := Context(c)
	if name != "" {
		ctx = logger.WithHandler(ctx, name)
		Store(c, ctx)
	}
	return ctx
}

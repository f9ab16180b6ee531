package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/tictactoe-bot/core/logger"
	"github.com/m3rciful/tictactoe-bot/internal/game"

	tele "gopkg.in/telebot.v4"
)

// Transport is the slice of the Bot API needed to apply intents.
type Transport interface {
	// Answer replies to the pending callback query; empty text answers silently.
	Answer(text string) error
	EditText(gameID, text string, markup *tele.ReplyMarkup) error
	EditMarkup(gameID string, markup *tele.ReplyMarkup) error
}

type render struct {
	text    string
	hasText bool
	markup  *tele.ReplyMarkup
}

// Execute applies intents through t. The callback is answered first so the
// client stops its spinner; every game message is then edited once, with text
// renders carrying the keyboard built from the same batch.
func Execute(ctx context.Context, t Transport, intents []game.Intent) error {
	var (
		ack     string
		order   []string
		renders = make(map[string]*render)
	)
	get := func(id string) *render {
		r, ok := renders[id]
		if !ok {
			r = &render{}
			renders[id] = r
			order = append(order, id)
		}
		return r
	}

	for _, in := range intents {
		switch v := in.(type) {
		case game.Acknowledge:
			ack = v.Text
		case game.RenderBoard:
			get(v.GameID).markup = BoardMarkup(v.View())
		case game.RenderClaimPrompt:
			get(v.GameID).markup = ClaimMarkup(v.Remaining)
		case game.RenderText:
			r := get(v.GameID)
			r.text, r.hasText = v.Text, true
		}
	}

	var errs []error
	if err := t.Answer(ack); err != nil {
		errs = append(errs, fmt.Errorf("answer callback: %w", err))
	}
	for _, id := range order {
		r := renders[id]
		var err error
		if r.hasText {
			err = t.EditText(id, r.text, r.markup)
		} else {
			err = t.EditMarkup(id, r.markup)
		}
		if errors.Is(err, tele.ErrSameMessageContent) {
			logger.Debug(ctx, component, "intent.edit",
				slog.String("status", "skip"),
				slog.String("game_id", id),
				slog.String("reason", "not_modified"),
			)
			continue
		}
		if err != nil && !errors.Is(err, tele.ErrTrueResult) {
			errs = append(errs, fmt.Errorf("edit game %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// contextTransport applies intents to the inline message behind a callback.
// Inline edits return true instead of a message, which telebot reports as
// tele.ErrTrueResult.
type contextTransport struct {
	c tele.Context
}

func (t contextTransport) Answer(text string) error {
	if text == "" {
		return t.c.Respond()
	}
	return t.c.Respond(&tele.CallbackResponse{Text: text})
}

func (t contextTransport) EditText(gameID, text string, markup *tele.ReplyMarkup) error {
	msg := tele.StoredMessage{MessageID: gameID}
	var err error
	if markup != nil {
		_, err = t.c.Bot().Edit(msg, text, markup)
	} else {
		_, err = t.c.Bot().Edit(msg, text)
	}
	return inlineResult(err)
}

func (t contextTransport) EditMarkup(gameID string, markup *tele.ReplyMarkup) error {
	_, err := t.c.Bot().EditReplyMarkup(tele.StoredMessage{MessageID: gameID}, markup)
	return inlineResult(err)
}

func inlineResult(err error) error {
	if errors.Is(err, tele.ErrTrueResult) {
		return nil
	}
	return err
}

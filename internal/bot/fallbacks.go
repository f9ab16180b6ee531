package bot

import (
	tghelpers "github.com/m3rciful/tictactoe-bot/core/telegram/helpers"
	"github.com/m3rciful/tictactoe-bot/core/telegram/router"

	tele "gopkg.in/telebot.v4"
)

var _ router.Fallbacks = (*Handlers)(nil)

// UnknownText points users at inline mode.
func (h *Handlers) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, MsgUnknownText)
	}
}

// UnknownDocument ignores the file and points users at inline mode.
func (h *Handlers) UnknownDocument() tele.HandlerFunc {
	return h.UnknownText()
}

// UnknownCallback answers buttons that do not belong to a game, such as
// keyboards left over from older bot versions.
func (h *Handlers) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: MsgNoGame})
	}
}

// RateLimited answers throttled button presses so the client stops its
// spinner. Other throttled updates are dropped silently.
func (h *Handlers) RateLimited(c tele.Context) error {
	if c.Callback() == nil {
		return nil
	}
	return c.Respond(&tele.CallbackResponse{Text: MsgSlowDown})
}

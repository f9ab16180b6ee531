package bot

import (
	"iter"

	"github.com/m3rciful/tictactoe-bot/core/telegram/keyboard"
	"github.com/m3rciful/tictactoe-bot/internal/game"

	tele "gopkg.in/telebot.v4"
)

// CallbackKey routes game buttons through the callback registry.
const CallbackKey = "ttt"

// Telegram rejects buttons with empty text, so free cells show a blank braille pattern.
const emptyCellText = "⠀"

func claimButton(r game.Role) keyboard.Button {
	return keyboard.Button{
		Text:   "Play for " + r.String(),
		Unique: CallbackKey,
		Data:   game.ClaimToken(r),
	}
}

// InitialMarkup offers both roles, one button per row.
func InitialMarkup() *tele.ReplyMarkup {
	return keyboard.Column(claimButton(game.RoleX), claimButton(game.RoleO))
}

// ClaimMarkup offers the single role still free.
func ClaimMarkup(remaining game.Role) *tele.ReplyMarkup {
	return keyboard.Column(claimButton(remaining))
}

// BoardMarkup renders the cells as a 3x3 grid of buttons.
func BoardMarkup(view iter.Seq2[int, game.Cell]) *tele.ReplyMarkup {
	buttons := make([]keyboard.Button, 0, game.Size)
	for i, c := range view {
		text := c.String()
		if c == game.Empty {
			text = emptyCellText
		}
		buttons = append(buttons, keyboard.Button{
			Text:   text,
			Unique: CallbackKey,
			Data:   game.CellToken(i),
		})
	}
	return keyboard.Grid(3, buttons...)
}

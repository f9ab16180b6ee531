// Package keyboard builds inline keyboards of callback buttons.
package keyboard

import (
	"slices"

	tele "gopkg.in/telebot.v4"
)

// Button is a callback button. Unique selects the registered callback
// handler and Data is the payload it receives.
type Button struct {
	Text   string
	Unique string
	Data   string
}

// Grid lays buttons out left to right, perRow to a row. perRow below 1 is
// treated as 1.
func Grid(perRow int, buttons ...Button) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	for chunk := range slices.Chunk(buttons, max(perRow, 1)) {
		row := make([]tele.InlineButton, 0, len(chunk))
		for _, b := range chunk {
			row = append(row, *m.Data(b.Text, b.Unique, b.Data).Inline())
		}
		m.InlineKeyboard = append(m.InlineKeyboard, row)
	}
	return m
}

// Column puts every button on its own row.
func Column(buttons ...Button) *tele.ReplyMarkup {
	return Grid(1, buttons...)
}

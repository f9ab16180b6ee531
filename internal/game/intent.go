package game

import "iter"

// Intent describes output the transport layer must apply.
type Intent interface {
	isIntent()
}

// Acknowledge answers the triggering event with a short notice.
type Acknowledge struct {
	EventID string
	Text    string
}

// RenderBoard redraws the cell keyboard of the game message.
type RenderBoard struct {
	GameID string
	Board  Board
}

// View yields the cells to render.
func (r RenderBoard) View() iter.Seq2[int, Cell] {
	return r.Board.View()
}

// RenderText replaces the game message text.
type RenderText struct {
	GameID string
	Text   string
}

// RenderClaimPrompt shows a single button for the role nobody holds yet.
type RenderClaimPrompt struct {
	GameID    string
	Remaining Role
}

func (Acknowledge) isIntent()       {}
func (RenderBoard) isIntent()       {}
func (RenderText) isIntent()        {}
func (RenderClaimPrompt) isIntent() {}

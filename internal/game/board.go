package game

import "iter"

// Size is the number of cells on the board.
const Size = 9

// Board holds the cells in row-major order.
type Board [Size]Cell

// View yields (index, cell) pairs. The board is copied, so later writes are not observed.
func (b Board) View() iter.Seq2[int, Cell] {
	return func(yield func(int, Cell) bool) {
		for i, c := range b {
			if !yield(i, c) {
				return
			}
		}
	}
}

// Full reports whether no Empty cell is left.
func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// Wins reports whether the mark at cell completes a line through that cell.
// Only the column, the row and the diagonals that contain cell are checked.
func (b Board) Wins(cell int) bool {
	if cell < 0 || cell >= Size || b[cell] == Empty {
		return false
	}
	x, y := cell/3, cell%3

	if b[y] == b[y+3] && b[y+3] == b[y+6] {
		return true
	}
	if b[3*x] == b[3*x+1] && b[3*x+1] == b[3*x+2] {
		return true
	}
	if x == y && b[0] == b[4] && b[4] == b[8] {
		return true
	}
	if x+y == 2 && b[2] == b[4] && b[4] == b[6] {
		return true
	}
	return false
}

package game

import "testing"

func boardOf(t *testing.T, s string) Board {
	t.Helper()
	if len(s) != Size {
		t.Fatalf("board literal %q must have %d cells", s, Size)
	}
	var b Board
	for i, r := range s {
		switch r {
		case 'x', 'X':
			b[i] = X
		case 'o', 'O':
			b[i] = O
		case '_', '.':
			b[i] = Empty
		default:
			t.Fatalf("bad cell %q", r)
		}
	}
	return b
}

func TestWinsMainDiagonal(t *testing.T) {
	b := boardOf(t, "xox"+"oxo"+"__x")
	if !b.Wins(8) {
		t.Fatal("expected main diagonal win through cell 8")
	}
}

func TestWinsLines(t *testing.T) {
	cases := []struct {
		name  string
		board string
		cell  int
		want  bool
	}{
		{"row", "xxx" + "oo_" + "___", 1, true},
		{"column", "o_x" + "o_x" + "o__", 6, true},
		{"anti diagonal", "__o" + "xox" + "o_x", 4, true},
		{"anti diagonal skipped off line", "__o" + "xo_" + "o_x", 3, false},
		{"main diagonal skipped off line", "x__" + "_xo" + "o_x", 5, false},
		{"empty cell", "xx_" + "___" + "___", 2, false},
		{"out of range", "xxx" + "___" + "___", 9, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := boardOf(t, tc.board)
			if got := b.Wins(tc.cell); got != tc.want {
				t.Fatalf("Wins(%d) = %v, want %v", tc.cell, got, tc.want)
			}
		})
	}
}

func TestWinsFullBoardWithoutLine(t *testing.T) {
	b := boardOf(t, "xox"+"oxo"+"oxo")
	for i := range Size {
		if b.Wins(i) {
			t.Fatalf("cell %d reported a win on a drawn board", i)
		}
	}
	if !b.Full() {
		t.Fatal("expected full board")
	}
}

func TestWinsIdempotent(t *testing.T) {
	b := boardOf(t, "xox"+"oxo"+"__x")
	first := b.Wins(8)
	for range 3 {
		if b.Wins(8) != first {
			t.Fatal("win check changed between runs")
		}
	}
}

// rotate maps index i to its position after a quarter turn.
func rotate(i int) int {
	x, y := i/3, i%3
	return y*3 + (2 - x)
}

// mirror maps index i to its horizontal reflection.
func mirror(i int) int {
	x, y := i/3, i%3
	return x*3 + (2 - y)
}

func symmetries() []func(int) int {
	var out []func(int) int
	for flip := range 2 {
		for turns := range 4 {
			out = append(out, func(i int) int {
				if flip == 1 {
					i = mirror(i)
				}
				for range turns {
					i = rotate(i)
				}
				return i
			})
		}
	}
	return out
}

func TestWinsSymmetric(t *testing.T) {
	syms := symmetries()
	for code := range 19683 {
		var b Board
		n := code
		for i := range Size {
			b[i] = Cell(n % 3)
			n /= 3
		}
		for cell := range Size {
			if b[cell] == Empty {
				continue
			}
			want := b.Wins(cell)
			for k, sym := range syms {
				var tb Board
				for i := range Size {
					tb[sym(i)] = b[i]
				}
				if got := tb.Wins(sym(cell)); got != want {
					t.Fatalf("symmetry %d of board %v at cell %d: got %v want %v", k, b, cell, got, want)
				}
			}
		}
	}
}

func TestBoardViewRestartable(t *testing.T) {
	b := boardOf(t, "x_o"+"___"+"__x")
	view := b.View()

	collect := func() []Cell {
		var cells []Cell
		for i, c := range view {
			if i != len(cells) {
				t.Fatalf("index %d out of order", i)
			}
			cells = append(cells, c)
		}
		return cells
	}
	first, second := collect(), collect()
	if len(first) != Size || len(second) != Size {
		t.Fatalf("expected %d cells, got %d and %d", Size, len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] || first[i] != b[i] {
			t.Fatalf("cell %d differs between iterations", i)
		}
	}

	b[1] = O
	for i, c := range view {
		if i == 1 && c != Empty {
			t.Fatal("view observed a write made after it was created")
		}
	}

	count := 0
	for range view {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Fatalf("early break yielded %d cells", count)
	}
}

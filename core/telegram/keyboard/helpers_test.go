package keyboard

import (
	"strconv"
	"testing"
)

func TestGrid(t *testing.T) {
	buttons := make([]Button, 7)
	for i := range buttons {
		buttons[i] = Button{Text: "b", Unique: "k", Data: strconv.Itoa(i)}
	}

	cases := []struct {
		perRow int
		rows   []int
	}{
		{3, []int{3, 3, 1}},
		{1, []int{1, 1, 1, 1, 1, 1, 1}},
		{0, []int{1, 1, 1, 1, 1, 1, 1}},
		{10, []int{7}},
	}
	for _, tc := range cases {
		kb := Grid(tc.perRow, buttons...).InlineKeyboard
		if len(kb) != len(tc.rows) {
			t.Fatalf("perRow=%d: %d rows, want %d", tc.perRow, len(kb), len(tc.rows))
		}
		for i, want := range tc.rows {
			if len(kb[i]) != want {
				t.Fatalf("perRow=%d row %d: %d buttons, want %d", tc.perRow, i, len(kb[i]), want)
			}
		}
	}

	last := Grid(3, buttons...).InlineKeyboard[2][0]
	if last.Unique != "k" || last.Data != "6" {
		t.Fatalf("last button = %+v", last)
	}
	if kb := Column().InlineKeyboard; len(kb) != 0 {
		t.Fatalf("empty column = %v", kb)
	}
}

package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name         string
		cb           *tele.Callback
		key, payload string
	}{
		{"nil", nil, "", ""},
		{"encoded", &tele.Callback{Data: "\fttt|player_x"}, "ttt", "player_x"},
		{"encoded no payload", &tele.Callback{Data: "\fttt"}, "ttt", ""},
		{"payload with separator", &tele.Callback{Data: "\fttt|a|b"}, "ttt", "a|b"},
		{"unique set", &tele.Callback{Unique: "ttt", Data: "4"}, "ttt", "4"},
		{"plain", &tele.Callback{Data: "player_o"}, "player_o", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			k, p := Parse(tc.cb)
			if k != tc.key || p != tc.payload {
				t.Fatalf("Parse = (%q, %q), want (%q, %q)", k, p, tc.key, tc.payload)
			}
		})
	}
}

func TestContextAccessors(t *testing.T) {
	b, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("NewBot: %v", err)
	}
	c := b.NewContext(tele.Update{Callback: &tele.Callback{Data: "\fttt|player_x"}})
	if got := CallbackKey(c); got != "ttt" {
		t.Fatalf("CallbackKey = %q", got)
	}
	if got := CallbackPayload(c); got != "player_x" {
		t.Fatalf("CallbackPayload = %q", got)
	}
}

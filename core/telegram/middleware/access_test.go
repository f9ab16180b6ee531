package middleware

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

type senderContext struct {
	tele.Context
	user *tele.User
}

func (s senderContext) Sender() *tele.User { return s.user }

func TestAdminOnly(t *testing.T) {
	cases := []struct {
		name    string
		adminID int64
		user    *tele.User
		allowed bool
	}{
		{"admin", 42, &tele.User{ID: 42}, true},
		{"stranger", 42, &tele.User{ID: 7}, false},
		{"no admin configured", 0, &tele.User{ID: 7}, false},
		{"no sender", 42, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ran, rejected := false, false
			h := AdminOnly(AdminOptions{
				AdminID:  tc.adminID,
				OnReject: func(tele.Context) error { rejected = true; return nil },
			})(func(tele.Context) error { ran = true; return nil })

			if err := h(senderContext{user: tc.user}); err != nil {
				t.Fatalf("handler: %v", err)
			}
			if ran != tc.allowed || rejected == tc.allowed {
				t.Fatalf("ran=%v rejected=%v, want allowed=%v", ran, rejected, tc.allowed)
			}
		})
	}
}

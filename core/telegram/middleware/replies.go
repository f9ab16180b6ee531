package middleware

import tele "gopkg.in/telebot.v4"

const repliesKey = "replies"

// Replies counts what a handler sent back for one update.
type Replies struct {
	Messages int
	Keyboard bool
}

// CountReplies wraps c so that successful sends, edits, callback answers and
// inline answers are tallied into the update's Replies.
func CountReplies(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if _, ok := c.Get(repliesKey).(*Replies); ok {
			return next(c)
		}
		r := &Replies{}
		c.Set(repliesKey, r)
		return next(countingContext{Context: c, r: r})
	}
}

// RepliesOf returns the tally for c, zero when CountReplies did not run.
func RepliesOf(c tele.Context) Replies {
	if r, ok := c.Get(repliesKey).(*Replies); ok {
		return *r
	}
	return Replies{}
}

type countingContext struct {
	tele.Context
	r *Replies
}

func (cc countingContext) count(err error, opts []any) error {
	if err != nil {
		return err
	}
	cc.r.Messages++
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.ReplyMarkup:
			cc.r.Keyboard = cc.r.Keyboard || v != nil
		case *tele.SendOptions:
			cc.r.Keyboard = cc.r.Keyboard || (v != nil && v.ReplyMarkup != nil)
		}
	}
	return nil
}

func (cc countingContext) Send(what any, opts ...any) error {
	return cc.count(cc.Context.Send(what, opts...), opts)
}

func (cc countingContext) Reply(what any, opts ...any) error {
	return cc.count(cc.Context.Reply(what, opts...), opts)
}

func (cc countingContext) Edit(what any, opts ...any) error {
	return cc.count(cc.Context.Edit(what, opts...), opts)
}

func (cc countingContext) EditOrSend(what any, opts ...any) error {
	return cc.count(cc.Context.EditOrSend(what, opts...), opts)
}

func (cc countingContext) Respond(resp ...*tele.CallbackResponse) error {
	return cc.count(cc.Context.Respond(resp...), nil)
}

func (cc countingContext) Answer(resp *tele.QueryResponse) error {
	return cc.count(cc.Context.Answer(resp), nil)
}

package middleware

import (
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	coreconfig "github.com/m3rciful/tictactoe-bot/core/config"
	"github.com/m3rciful/tictactoe-bot/core/logger"
	"github.com/m3rciful/tictactoe-bot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures RateLimit.
type RateLimitOptions struct {
	Interval time.Duration
	// Exclude lists update kinds (coreconfig.Update*) that are never limited.
	Exclude []string
	// OnLimited runs instead of the handler for a throttled update.
	OnLimited tele.HandlerFunc
}

// RateLimit lets each user through at most once per Interval.
func RateLimit(opts RateLimitOptions) tele.MiddlewareFunc {
	l := newLimiter(opts.Interval)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			u := c.Sender()
			if u == nil || opts.Interval <= 0 || slices.Contains(opts.Exclude, updateKind(c.Update())) {
				return next(c)
			}
			if l.allow(u.ID, time.Now()) {
				return next(c)
			}
			logger.Warn(helpers.Context(c), "tg", "rate_limit",
				slog.String("status", "rate_limited"),
				slog.Duration("interval", opts.Interval),
			)
			if opts.OnLimited != nil {
				return opts.OnLimited(c)
			}
			return nil
		}
	}
}

// limiter remembers when each user was last let through. Entries older than
// the interval are swept at most once per interval.
type limiter struct {
	interval  time.Duration
	lastSeen  *xsync.MapOf[int64, time.Time]
	lastSweep atomic.Int64
}

func newLimiter(interval time.Duration) *limiter {
	return &limiter{interval: interval, lastSeen: xsync.NewMapOf[int64, time.Time]()}
}

func (l *limiter) allow(id int64, now time.Time) bool {
	l.sweep(now)
	allowed := false
	l.lastSeen.Compute(id, func(last time.Time, loaded bool) (time.Time, bool) {
		if loaded && now.Sub(last) < l.interval {
			return last, false
		}
		allowed = true
		return now, false
	})
	return allowed
}

func (l *limiter) sweep(now time.Time) {
	prev := l.lastSweep.Load()
	if now.UnixNano()-prev < int64(l.interval) || !l.lastSweep.CompareAndSwap(prev, now.UnixNano()) {
		return
	}
	l.lastSeen.Range(func(id int64, last time.Time) bool {
		if now.Sub(last) >= l.interval {
			l.lastSeen.Compute(id, func(cur time.Time, loaded bool) (time.Time, bool) {
				return cur, !loaded || now.Sub(cur) >= l.interval
			})
		}
		return true
	})
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return coreconfig.UpdateCallback
	case upd.Message != nil:
		return coreconfig.UpdateMessage
	case upd.Query != nil:
		return coreconfig.UpdateInlineQuery
	case upd.InlineResult != nil:
		return coreconfig.UpdateInlineResult
	}
	return "other"
}

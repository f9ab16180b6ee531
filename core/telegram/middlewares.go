package telegram

import (
	"time"

	coreconfig "github.com/m3rciful/tictactoe-bot/core/config"
	"github.com/m3rciful/tictactoe-bot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares is the global chain: recover, the optional per-user rate
// limit, update logging and reply counting. onLimited answers throttled updates.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited tele.HandlerFunc) []Middleware {
	mws := []Middleware{{Name: "recover", Use: middleware.Recover}}
	if cfg != nil && cfg.RateLimit.IntervalMS > 0 {
		mws = append(mws, Middleware{Name: "rate_limit", Use: middleware.RateLimit(middleware.RateLimitOptions{
			Interval:  time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
			Exclude:   cfg.RateLimit.ExcludeUpdates,
			OnLimited: onLimited,
		})})
	}
	return append(mws,
		Middleware{Name: "logger", Use: middleware.Logger},
		Middleware{Name: "replies", Use: middleware.CountReplies},
	)
}

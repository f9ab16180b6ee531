// Package sender runs outbound Telegram calls on a small worker pool so
// handlers return before the API answers.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/tictactoe-bot/core/logger"
)

const component = "tg.sender"

var (
	ErrClosed = errors.New("sender: outbox closed")
	ErrFull   = errors.New("sender: outbox full")

	tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
)

// Options tunes an Outbox. Zero values pick the defaults.
type Options struct {
	QueueSize int
	Workers   int
	// Retries is the number of extra attempts after a retryable failure.
	Retries int
	Backoff time.Duration
	// Deadline bounds one call including its retries.
	Deadline time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.Backoff <= 0 {
		o.Backoff = time.Second
	}
	if o.Deadline <= 0 {
		o.Deadline = 12 * time.Second
	}
	o.Retries = max(o.Retries, 0)
	return o
}

type call struct {
	ctx    context.Context
	action string
	fn     func() error
}

// Outbox is a bounded queue of API calls drained by a fixed set of workers.
type Outbox struct {
	opts   Options
	mu     sync.RWMutex
	closed bool
	queue  chan call
	wg     sync.WaitGroup
	failed atomic.Uint64
}

func New(opts Options) *Outbox {
	opts = opts.withDefaults()
	o := &Outbox{opts: opts, queue: make(chan call, opts.QueueSize)}
	o.wg.Add(opts.Workers)
	for range opts.Workers {
		go o.work()
	}
	return o
}

// Enqueue schedules fn. It never blocks: a full or closed outbox returns
// ErrFull or ErrClosed and the caller decides whether to run fn inline.
func (o *Outbox) Enqueue(ctx context.Context, action string, fn func() error) error {
	if fn == nil {
		return errors.New("sender: nil call")
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		return ErrClosed
	}
	select {
	case o.queue <- call{ctx: ctx, action: action, fn: fn}:
		return nil
	default:
		return ErrFull
	}
}

// Failed counts calls that ran out of attempts.
func (o *Outbox) Failed() uint64 {
	return o.failed.Load()
}

// Close drains the queue and stops the workers.
func (o *Outbox) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	close(o.queue)
	o.mu.Unlock()
	o.wg.Wait()
}

func (o *Outbox) work() {
	defer o.wg.Done()
	for c := range o.queue {
		o.run(c)
	}
}

func (o *Outbox) run(c call) {
	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	attempts, err := Do(ctx, o.opts.Retries, o.opts.Backoff, o.opts.Deadline, c.fn)
	attrs := []slog.Attr{
		slog.String("action", c.action),
		slog.Int("attempts", attempts),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		o.failed.Add(1)
		logger.Error(ctx, component, "send", append(attrs,
			slog.String("status", "fail"),
			slog.String("err", Redact(err)),
			slog.String("err_code", Classify(err)),
		)...)
		return
	}
	logger.Debug(ctx, component, "send", append(attrs, slog.String("status", "ok"))...)
}

// Do calls fn until it succeeds, fails with a non-retryable error, runs out of
// retries or the deadline passes. The wait before attempt n is n*backoff.
func Do(ctx context.Context, retries int, backoff, deadline time.Duration, fn func() error) (int, error) {
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || attempt > retries || !Retryable(err) {
			return attempt, err
		}
		t := time.NewTimer(time.Duration(attempt) * backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return attempt, errors.Join(err, ctx.Err())
		case <-t.C:
		}
	}
}

// Redact hides bot tokens that net/http puts into request URLs.
func Redact(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}

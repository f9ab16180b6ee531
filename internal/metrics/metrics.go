// Package metrics exposes game counters in Prometheus format.
//
// Label values are drawn from fixed sets (event outcomes and end results), so
// cardinality stays bounded regardless of how many games are played.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/tictactoe-bot/core/logger"
)

const component = "metrics"

// End results recorded by GameEnded.
const (
	ResultWon  = "won"
	ResultDraw = "draw"
)

// Recorder owns a private registry with the game collectors. A nil Recorder
// discards every observation.
type Recorder struct {
	reg     *prometheus.Registry
	created prometheus.Counter
	events  *prometheus.CounterVec
	ended   *prometheus.CounterVec
}

// New registers the game collectors together with the Go runtime and process
// collectors.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ttt_games_created_total",
			Help: "Games created from chosen inline results.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttt_events_total",
			Help: "Button presses processed, by outcome.",
		}, []string{"outcome"}),
		ended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttt_games_ended_total",
			Help: "Games that reached a terminal state, by result.",
		}, []string{"result"}),
	}
	r.reg.MustRegister(
		r.created,
		r.events,
		r.ended,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// GameCreated counts a new game.
func (r *Recorder) GameCreated() {
	if r == nil {
		return
	}
	r.created.Inc()
}

// EventHandled counts a processed button press.
func (r *Recorder) EventHandled(outcome string) {
	if r == nil {
		return
	}
	r.events.WithLabelValues(outcome).Inc()
}

// GameEnded counts a finished game; result is ResultWon or ResultDraw.
func (r *Recorder) GameEnded(result string) {
	if r == nil {
		return
	}
	r.ended.WithLabelValues(result).Inc()
}

// Registry returns the registry holding the game collectors, or nil for a
// nil Recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	reg := r.Registry()
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info(ctx, component, "metrics.listen",
		slog.String("status", "ok"),
		slog.String("listen", addr),
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics: shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics: listen %s: %w", addr, err)
	}
}

package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/tictactoe-bot/core/buildinfo"
	coreconfig "github.com/m3rciful/tictactoe-bot/core/config"
)

// L is the root logger. It stays nil until InitLogger runs; the package
// level helpers below are safe to call before that and simply drop events.
var L *slog.Logger

var (
	initOnce     sync.Once
	shutdownOnce sync.Once

	out   *asyncWriter
	files []io.Closer
	level slog.LevelVar

	// debugEvery keeps one of every N sampled debug events; 0 keeps all.
	debugEvery atomic.Int64
	debugSeen  atomic.Int64
)

const defaultDebugSample = 50

// InitLogger installs the structured logger described by cfg.Logging as
// both L and the slog default. Later calls are no-ops.
func InitLogger(cfg *coreconfig.Config) error {
	var err error
	initOnce.Do(func() {
		var lc coreconfig.LoggingConfig
		if cfg != nil {
			lc = cfg.Logging
		}
		sinks := []io.Writer{os.Stdout}
		if f, ferr := openLogFile(lc); ferr != nil {
			err = ferr
			return
		} else if f != nil {
			sinks = append(sinks, f)
			files = append(files, f)
		}

		level.Set(parseLevel(lc.Level))
		debugEvery.Store(parseSample(lc.DebugSample))
		if traceForced() {
			debugEvery.Store(0)
		}

		out = newAsyncWriter(sinks, 256)
		L = slog.New(newLineHandler(handlerOptions{
			level:  &level,
			out:    out,
			format: parseFormat(lc),
			order:  parseOrder(lc.KeysOrder),
		}))
		slog.SetDefault(L)

		L.LogAttrs(context.Background(), slog.LevelInfo, "startup",
			slog.String("event", "startup"),
			slog.String("go_version", runtime.Version()),
			slog.String("version", buildinfo.Version),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("build_time", buildinfo.Date),
			slog.String("cfg_profile", cmpOrLower(lc.Profile, "prod")),
		)
	})
	return err
}

// Shutdown flushes pending lines and closes log files.
func Shutdown() error {
	var errs []error
	shutdownOnce.Do(func() {
		if out != nil {
			errs = append(errs, out.Close())
		}
		for _, f := range files {
			errs = append(errs, f.Close())
		}
	})
	return errors.Join(errs...)
}

func openLogFile(lc coreconfig.LoggingConfig) (*os.File, error) {
	dir, name := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile)
	if dir == "" || name == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// parseFormat picks key=value output for "kv"/"text" or debug profiles and
// JSON otherwise.
func parseFormat(lc coreconfig.LoggingConfig) lineFormat {
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "json":
		return formatJSON
	case "kv", "text", "pretty":
		return formatKV
	}
	switch strings.ToLower(lc.Profile) {
	case "debug", "dev":
		return formatKV
	}
	return formatJSON
}

func parseOrder(s string) []string {
	if s = strings.TrimSpace(s); s == "" || s == "default" {
		return defaultKeyOrder
	}
	var order []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			order = append(order, k)
		}
	}
	if len(order) == 0 {
		return defaultKeyOrder
	}
	return order
}

// parseSample reads "N" or "1/N" as one event out of N. "0" logs every event.
func parseSample(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultDebugSample
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.Atoi(strings.TrimSpace(num))
		d, err2 := strconv.Atoi(strings.TrimSpace(den))
		if err1 != nil || err2 != nil || n <= 0 || d <= 0 {
			return defaultDebugSample
		}
		return int64(max(d/n, 1))
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return defaultDebugSample
	}
	return int64(n)
}

func traceForced() bool {
	for _, k := range []string{"TRACE", "LOG_TRACE"} {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
		case "1", "true", "on", "yes":
			return true
		}
	}
	return false
}

// ShouldSampleDebug reports whether a high-volume debug event should be
// logged. TRACE=1 disables sampling.
func ShouldSampleDebug() bool {
	every := debugEvery.Load()
	if every <= 1 {
		return true
	}
	return debugSeen.Add(1)%every == 1
}

func cmpOrLower(s, fallback string) string {
	if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
		return s
	}
	return fallback
}

// Background returns context.Background().
func Background() context.Context {
	return context.Background()
}

// Component returns L scoped to the component, or nil before InitLogger.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// LogEvent writes attrs under the event name using logg, the logger in ctx,
// or L, whichever is set first.
func LogEvent(ctx context.Context, logg *slog.Logger, lvl slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if logg == nil {
		return
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, lvl, event, attrs...)
}

// Event logs event for component at lvl.
func Event(ctx context.Context, component string, lvl slog.Level, event string, attrs ...slog.Attr) {
	logg := FromContext(ctx)
	if logg != nil && component != "" {
		logg = logg.With("component", component)
	}
	LogEvent(ctx, logg, lvl, event, attrs...)
}

func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// RoundMS rounds d to whole milliseconds; negative values become zero.
func RoundMS(d time.Duration) time.Duration {
	return max(d, 0).Round(time.Millisecond)
}

// Took is RoundMS(time.Since(start)).
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

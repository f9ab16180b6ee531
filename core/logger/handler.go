package logger

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"
)

type lineFormat uint8

const (
	formatJSON lineFormat = iota
	formatKV
)

const tsLayout = "2006-01-02T15:04:05.000Z07:00"

// defaultKeyOrder puts the fields operators grep for first; the rest follow
// alphabetically.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "chat_type", "handler",
	"cb_key", "outcome", "duration_ms", "messages", "kb", "payload",
	"game_id", "game_status", "turn", "result", "intents",
	"mode", "listen", "public_url", "db", "host", "port",
	"err", "err_code", "cause", "attempts",
}

// knownStatus lists the values the status field is expected to carry.
var knownStatus = map[string]bool{
	"ok": true, "fail": true, "skip": true, "retry": true,
	"rate_limited": true, "cancelled": true,
}

type handlerOptions struct {
	level  slog.Leveler
	out    *asyncWriter
	format lineFormat
	order  []string
}

// lineHandler is a slog.Handler that renders flat JSON or key=value lines
// with a stable key order and update metadata pulled from the context.
type lineHandler struct {
	opts   handlerOptions
	bound  map[string]any
	prefix string
}

func newLineHandler(opts handlerOptions) *lineHandler {
	if opts.level == nil {
		opts.level = slog.LevelInfo
	}
	if len(opts.order) == 0 {
		opts.order = defaultKeyOrder
	}
	return &lineHandler{opts: opts}
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

func (h *lineHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.opts.out == nil {
		return fmt.Errorf("logger: writer not initialized")
	}
	f := make(map[string]any, len(h.bound)+16)
	for k, v := range h.bound {
		f[k] = v
	}
	ts := r.Time.UTC()
	f["ts"] = ts.Format(tsLayout)
	f["level"] = r.Level.String()
	if h.opts.format == formatJSON {
		f["ts_unix_nano"] = ts.UnixNano()
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(f, h.prefix, a)
		return true
	})
	addMeta(f, MetaFrom(ctx))
	h.finish(f, r.Message)

	var line []byte
	if h.opts.format == formatJSON {
		var err error
		if line, err = encodeJSON(f, h.opts.order); err != nil {
			return err
		}
	} else {
		line = encodeKV(f, h.opts.order)
	}
	return h.opts.out.Write(append(line, '\n'))
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.bound = make(map[string]any, len(h.bound)+len(attrs))
	for k, v := range h.bound {
		clone.bound[k] = v
	}
	for _, a := range attrs {
		addAttr(clone.bound, h.prefix, a)
	}
	return &clone
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = joinKey(h.prefix, name)
	return &clone
}

// finish fills defaults and drops empty values.
func (h *lineHandler) finish(f map[string]any, msg string) {
	if rid, ok := f["rid"].(string); ok {
		if short := CompactRID(rid); short != rid {
			if h.opts.format == formatJSON {
				f["rid_full"] = rid
			}
			f["rid"] = short
		}
	}
	if s, _ := f["event"].(string); s == "" {
		f["event"] = cmp.Or(msg, "unknown")
	}
	if s, _ := f["component"].(string); s == "" {
		f["component"] = "app"
	}
	if s, ok := f["status"].(string); ok {
		if low := strings.ToLower(s); knownStatus[low] {
			f["status"] = low
		}
	}
	for k, v := range f {
		if s, ok := v.(string); ok && s == "" {
			delete(f, k)
		}
	}
}

func addMeta(f map[string]any, m Meta) {
	setDefault(f, "rid", m.RID)
	setDefault(f, "handler", m.Handler)
	if m.UpdateID != 0 {
		setDefault(f, "update_id", int64(m.UpdateID))
	}
	if m.UserID != 0 {
		setDefault(f, "user_id", m.UserID)
	}
	if m.ChatID != 0 {
		setDefault(f, "chat_id", m.ChatID)
	}
}

func setDefault(f map[string]any, key string, v any) {
	if s, ok := v.(string); ok && s == "" {
		return
	}
	if _, ok := f[key]; !ok {
		f[key] = v
	}
}

func addAttr(f map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	key := joinKey(prefix, a.Key)
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			addAttr(f, key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if d, ok := durationOf(v); ok {
		f[msKey(key)] = RoundMS(d).Milliseconds()
		return
	}
	switch v.Kind() {
	case slog.KindString:
		f[key] = strings.TrimSpace(v.String())
	case slog.KindInt64:
		f[key] = v.Int64()
	case slog.KindUint64:
		f[key] = v.Uint64()
	case slog.KindFloat64:
		f[key] = v.Float64()
	case slog.KindBool:
		f[key] = v.Bool()
	case slog.KindTime:
		f[key] = v.Time().UTC().Format(time.RFC3339Nano)
	default:
		switch x := v.Any().(type) {
		case nil:
		case error:
			f[key] = x.Error()
		case fmt.Stringer:
			f[key] = x.String()
		default:
			f[key] = fmt.Sprint(x)
		}
	}
}

func durationOf(v slog.Value) (time.Duration, bool) {
	if v.Kind() == slog.KindDuration {
		return v.Duration(), true
	}
	if v.Kind() == slog.KindAny {
		d, ok := v.Any().(time.Duration)
		return d, ok
	}
	return 0, false
}

// msKey renames duration keys so the unit is explicit: duration -> duration_ms.
func msKey(key string) string {
	if strings.HasSuffix(key, "_ms") {
		return key
	}
	return key + "_ms"
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	}
	return prefix + "." + key
}

func orderedKeys(f map[string]any, order []string) []string {
	keys := make([]string, 0, len(f))
	for _, k := range order {
		if _, ok := f[k]; ok {
			keys = append(keys, k)
		}
	}
	head := len(keys)
	for k := range f {
		if !slices.Contains(order, k) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys[head:])
	return keys
}

func encodeJSON(f map[string]any, order []string) ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range orderedKeys(f, order) {
		v, err := json.Marshal(f[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %s: %w", k, err)
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func encodeKV(f map[string]any, order []string) []byte {
	var b bytes.Buffer
	for i, k := range orderedKeys(f, order) {
		if i > 0 {
			b.WriteByte(' ')
		}
		s := fmt.Sprint(f[k])
		if strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
			s = strconv.Quote(s)
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(s)
	}
	return b.Bytes()
}

package telemetry

import (
	"context"
	"log/slog"
	"slices"
)

// Logger writes telemetry events as structured log records.
type Logger struct {
	log   *slog.Logger
	level slog.Level
}

// NewLogger returns a Logger writing at level. A nil logger discards.
func NewLogger(log *slog.Logger, level slog.Level) *Logger {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Logger{log: log, level: level}
}

// Record logs event with the payload keys in sorted order.
func (l *Logger) Record(ctx context.Context, event string, payload map[string]any) {
	if !l.log.Enabled(ctx, l.level) {
		return
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	attrs := make([]slog.Attr, 0, len(keys)+1)
	attrs = append(attrs, slog.String("event", event))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, payload[k]))
	}
	l.log.LogAttrs(ctx, l.level, "telemetry", attrs...)
}

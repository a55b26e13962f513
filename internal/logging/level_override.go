package logging

import (
	"context"
	"log/slog"
)

// componentLevelHandler enforces a minimum level chosen by the component
// attribute attached through WithAttrs. The wrapped handler must be configured
// with the most verbose level any component needs.
type componentLevelHandler struct {
	next      slog.Handler
	fallback  slog.Level
	overrides map[string]slog.Level
	level     slog.Level
}

func newComponentLevelHandler(next slog.Handler, fallback slog.Level, overrides map[string]slog.Level) slog.Handler {
	if next == nil {
		return NoopHandler{}
	}
	return &componentLevelHandler{next: next, fallback: fallback, overrides: overrides, level: fallback}
}

func (h *componentLevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < h.level {
		return false
	}
	return h.next.Enabled(ctx, level)
}

func (h *componentLevelHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.level {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h *componentLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := &componentLevelHandler{
		next:      h.next.WithAttrs(attrs),
		fallback:  h.fallback,
		overrides: h.overrides,
		level:     h.level,
	}
	for _, attr := range attrs {
		if attr.Key != FieldComponent {
			continue
		}
		if lvl, ok := h.overrides[attr.Value.Resolve().String()]; ok {
			clone.level = lvl
		} else {
			clone.level = h.fallback
		}
	}
	return clone
}

func (h *componentLevelHandler) WithGroup(name string) slog.Handler {
	return &componentLevelHandler{
		next:      h.next.WithGroup(name),
		fallback:  h.fallback,
		overrides: h.overrides,
		level:     h.level,
	}
}

package logger

import (
	"context"
	"fmt"
	"log/slog"
)

// ContextExtractor pulls one attribute out of a request context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// FromContext returns an extractor that logs the value stored under key as
// attribute name. Strings and fmt.Stringers are supported; empty values are skipped.
//
//	logger.New(cfg, logger.FromContext("request_id", requestIDKey{}))
func FromContext(name string, key any) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		var v string
		switch val := ctx.Value(key).(type) {
		case string:
			v = val
		case fmt.Stringer:
			v = val.String()
		}
		if v == "" {
			return slog.Attr{}, false
		}
		return slog.String(name, v), true
	}
}

// contextHandler adds extracted attributes to every record at log time.
type contextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

func withExtractors(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	if len(clean) == 0 {
		return next
	}
	return &contextHandler{next: next, extractors: clean}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}

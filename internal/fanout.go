package internal

import (
	"context"
	"errors"
	"log/slog"
)

// fanoutHandler forwards every record to all the handlers that accept its level.
type fanoutHandler struct {
	handlers []slog.Handler
}

func newFanoutHandler(handlers ...slog.Handler) *fanoutHandler {
	return &fanoutHandler{
		handlers: handlers,
	}
}

func (fh *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range fh.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (fh *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error

	for _, h := range fh.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}

		if err := h.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (fh *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, 0, len(fh.handlers))
	for _, h := range fh.handlers {
		handlers = append(handlers, h.WithAttrs(attrs))
	}

	return newFanoutHandler(handlers...)
}

func (fh *fanoutHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, 0, len(fh.handlers))
	for _, h := range fh.handlers {
		handlers = append(handlers, h.WithGroup(name))
	}

	return newFanoutHandler(handlers...)
}

package logger

import (
	"context"
	"fmt"
	"log/slog"
)

// AdminNotifier delivers a log line to the operator chat.
type AdminNotifier interface {
	SendMessage(msg string)
}

// SetupTelegramHandler wraps the logger so records at or above level are
// also forwarded to the admin chat.
func SetupTelegramHandler(log *slog.Logger, notifier AdminNotifier, level slog.Level) *slog.Logger {
	return slog.New(&telegramHandler{
		next:     log.Handler(),
		notifier: notifier,
		level:    level,
	})
}

type telegramHandler struct {
	next     slog.Handler
	notifier AdminNotifier
	level    slog.Level
}

func (h *telegramHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *telegramHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level && h.notifier != nil {
		msg := fmt.Sprintf("[%s] %s", r.Level, r.Message)
		r.Attrs(func(a slog.Attr) bool {
			msg += fmt.Sprintf("\n%s: %v", a.Key, a.Value)
			return true
		})
		go h.notifier.SendMessage(msg)
	}
	return h.next.Handle(ctx, r)
}

func (h *telegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &telegramHandler{next: h.next.WithAttrs(attrs), notifier: h.notifier, level: h.level}
}

func (h *telegramHandler) WithGroup(name string) slog.Handler {
	return &telegramHandler{next: h.next.WithGroup(name), notifier: h.notifier, level: h.level}
}

package notify

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go-token-swap"
)

// Notifier receives swap outcomes without acknowledging them
type Notifier interface {
	Notify(ctx context.Context, n swap.Notification)
}

// logNotifier writes notifications to a logger: success at info, failure at warn
type logNotifier struct {
	logger log.Logger
}

func NewLogNotifier(logger log.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(_ context.Context, note swap.Notification) {
	logger := level.Info(n.logger)
	if note.Status != swap.StatusSuccess {
		logger = level.Warn(n.logger)
	}
	logger.Log(
		"msg", note.Title,
		"description", note.Description,
		"id", note.Record.ID,
		"status", note.Status,
	)
}

// multi fans a notification out to several notifiers in order
type multi []Notifier

// Multi returns a Notifier that notifies each of ns
func Multi(ns ...Notifier) Notifier {
	return multi(ns)
}

func (m multi) Notify(ctx context.Context, note swap.Notification) {
	for _, n := range m {
		n.Notify(ctx, note)
	}
}

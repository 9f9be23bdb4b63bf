package notification

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Hitojaa/skinport-trader/internal/service/strategy"
)

type fanout struct {
	notifiers []Notifier
}

// NewFanout delivers to every channel. Channels are independent: one failing
// delivery is logged and does not stop the others.
func NewFanout(notifiers ...Notifier) Notifier {
	return &fanout{
		notifiers: notifiers,
	}
}

func (f *fanout) Notify(ctx context.Context, signal strategy.Signal) error {
	var errs []error
	for _, n := range f.notifiers {
		if err := n.Notify(ctx, signal); err != nil {
			slog.Error("channel delivery failed", "item", signal.MarketHashName, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *fanout) NotifyText(ctx context.Context, text string) error {
	var errs []error
	for _, n := range f.notifiers {
		if err := n.NotifyText(ctx, text); err != nil {
			slog.Error("channel delivery failed", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

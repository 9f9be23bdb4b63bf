package notification

import (
	"context"

	"github.com/Hitojaa/skinport-trader/internal/service/strategy"
)

// Notifier delivers alerts to one channel. Implementations format their own
// provider-specific payloads; the scan loop never sees them.
type Notifier interface {
	Notify(ctx context.Context, signal strategy.Signal) error
	// NotifyText carries plain service messages (startup, daily summary).
	NotifyText(ctx context.Context, text string) error
}

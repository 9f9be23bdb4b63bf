package monitor

import (
	"context"
	"time"

	"github.com/Hitojaa/skinport-trader/internal/service/market"
)

// ScanService runs one pass over a working set of items, strictly in the
// order given. A failing item is logged and skipped; the scan only stops on
// cancellation.
type ScanService interface {
	Scan(ctx context.Context, items []market.Snapshot) error
}

// Stats are the running counters folded into the daily summary.
type Stats struct {
	ItemsScanned    int
	SignalsDetected int
	AlertsSent      int
	Since           time.Time
}

// StatsSource hands out the counters accumulated since the last reset.
type StatsSource interface {
	SnapshotAndReset() Stats
}

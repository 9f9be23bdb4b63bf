package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Hitojaa/skinport-trader/internal/schedule"
	"github.com/Hitojaa/skinport-trader/internal/service/market"
)

// TrackerTask watches a fixed list of named items independently of the broad
// scan, so a handful of skins of interest keep getting evaluated even when
// they fall outside the working-set filters.
type TrackerTask struct {
	itemSvc market.ItemService
	scanSvc ScanService
	names   []string
}

func NewTrackerTask(scanSvc ScanService, itemSvc market.ItemService, names []string) schedule.Task {
	return &TrackerTask{
		itemSvc: itemSvc,
		scanSvc: scanSvc,
		names:   names,
	}
}

func (t *TrackerTask) Run(ctx context.Context) error {
	working := make([]market.Snapshot, 0, len(t.names))
	for _, name := range t.names {
		snap, err := t.itemSvc.FetchSnapshot(ctx, name)
		if err != nil {
			switch {
			case errors.Is(err, market.ErrItemNotFound):
				slog.Warn("tracked item not listed", "item", name)
				continue
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				slog.Error("failed to fetch tracked item", "item", name, "error", err)
				continue
			}
		}
		working = append(working, snap)
	}
	if len(working) == 0 {
		return nil
	}
	return t.scanSvc.Scan(ctx, working)
}

func (t *TrackerTask) Name() string {
	return fmt.Sprintf("tracker task (%d items)", len(t.names))
}

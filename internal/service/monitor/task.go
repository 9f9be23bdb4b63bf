package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Hitojaa/skinport-trader/internal/schedule"
	"github.com/Hitojaa/skinport-trader/internal/service/market"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// WorkingSetConfig shapes which part of the listing a scan covers. The rate
// budget is the real constraint: every item in the set costs one history
// request, so MaxItems bounds scan duration.
type WorkingSetConfig struct {
	MaxItems    int             `mapstructure:"max_items_per_scan"`
	MinQuantity int             `mapstructure:"min_item_quantity"`
	MaxPrice    decimal.Decimal `mapstructure:"-"`
}

type ScanTask struct {
	itemSvc    market.ItemService
	scanSvc    ScanService
	cfg        WorkingSetConfig
	rejectItem func(ctx context.Context, snap market.Snapshot) bool // if true, reject
}

func NewScanTask(scanSvc ScanService, itemSvc market.ItemService, cfg WorkingSetConfig,
	reject ...func(ctx context.Context, snap market.Snapshot) bool) schedule.Task {
	task := &ScanTask{
		itemSvc: itemSvc,
		scanSvc: scanSvc,
		cfg:     cfg,
		rejectItem: func(ctx context.Context, snap market.Snapshot) bool {
			return false
		},
	}
	if len(reject) > 0 {
		task.rejectItem = reject[0]
	}
	return task
}

func (t *ScanTask) Run(ctx context.Context) error {
	listing, err := t.itemSvc.ListItems(ctx)
	if err != nil {
		var throttled *market.ThrottledError
		if errors.As(err, &throttled) {
			slog.Warn("listing throttled, skipping this cycle")
			return nil
		}
		return err
	}

	working := lo.Filter(listing, func(snap market.Snapshot, index int) bool {
		if snap.Price.IsZero() {
			return false
		}
		if !t.cfg.MaxPrice.IsZero() && snap.Price.GreaterThan(t.cfg.MaxPrice) {
			return false
		}
		if snap.Quantity < t.cfg.MinQuantity {
			return false
		}
		return !t.rejectItem(ctx, snap)
	})

	// truncate, preserving listing order so scan order stays reproducible
	if t.cfg.MaxItems > 0 && len(working) > t.cfg.MaxItems {
		working = working[:t.cfg.MaxItems]
	}

	slog.Info("working set selected",
		"listed", len(listing),
		"selected", len(working),
		"estimated", (45 * time.Second * time.Duration(len(working))).Round(time.Minute))

	return t.scanSvc.Scan(ctx, working)
}

func (t *ScanTask) Name() string {
	return "skinport scan task"
}

package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Hitojaa/skinport-trader/internal/repo"
	"github.com/Hitojaa/skinport-trader/internal/schedule"
	"github.com/Hitojaa/skinport-trader/internal/service/notification"
)

const summaryBacklogLimit = 50

// SummaryTask posts the accumulated scan counters to the alert channels and
// resets them, giving a daily heartbeat even when no signal fired.
type SummaryTask struct {
	source     StatsSource
	signalRepo repo.SignalRepo
	notifier   notification.Notifier
}

func NewSummaryTask(source StatsSource, signalRepo repo.SignalRepo, notifier notification.Notifier) schedule.Task {
	return &SummaryTask{
		source:     source,
		signalRepo: signalRepo,
		notifier:   notifier,
	}
}

func (t *SummaryTask) Run(ctx context.Context) error {
	stats := t.source.SnapshotAndReset()

	var sb strings.Builder
	fmt.Fprintf(&sb, "daily summary (since %s)\n", stats.Since.Format(time.RFC3339))
	fmt.Fprintf(&sb, "items scanned: %d\n", stats.ItemsScanned)
	fmt.Fprintf(&sb, "signals detected: %d\n", stats.SignalsDetected)
	fmt.Fprintf(&sb, "alerts sent: %d", stats.AlertsSent)

	backlog, err := t.signalRepo.FindUnalerted(ctx, summaryBacklogLimit)
	if err != nil {
		slog.Error("failed to load unalerted backlog", "error", err)
	} else if len(backlog) > 0 {
		fmt.Fprintf(&sb, "\nunalerted backlog: %d", len(backlog))
	}

	return t.notifier.NotifyText(ctx, sb.String())
}

func (t *SummaryTask) Name() string {
	return "daily summary task"
}

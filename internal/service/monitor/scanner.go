package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Hitojaa/skinport-trader/internal/entity"
	"github.com/Hitojaa/skinport-trader/internal/repo"
	"github.com/Hitojaa/skinport-trader/internal/service/market"
	"github.com/Hitojaa/skinport-trader/internal/service/notification"
	"github.com/Hitojaa/skinport-trader/internal/service/strategy"
)

type Scanner struct {
	analyzer   strategy.Analyzer
	historySvc market.HistoryService
	alertGate  *notification.Gate
	notifier   notification.Notifier

	itemRepo   repo.ItemRepo
	tickRepo   repo.TickRepo
	signalRepo repo.SignalRepo

	statsMu sync.Mutex
	stats   Stats
}

type consoleNotifier struct{}

func (c consoleNotifier) Notify(ctx context.Context, signal strategy.Signal) error {
	fmt.Printf("signal %s: %s (%s)\n", signal.Type, signal.MarketHashName, signal.Reason)
	return nil
}

func (c consoleNotifier) NotifyText(ctx context.Context, text string) error {
	fmt.Println(text)
	return nil
}

type Option func(s *Scanner)

func WithNotifier(notifier notification.Notifier) Option {
	return func(s *Scanner) {
		s.notifier = notifier
	}
}

func NewScanner(analyzer strategy.Analyzer, historySvc market.HistoryService, alertGate *notification.Gate,
	itemRepo repo.ItemRepo, tickRepo repo.TickRepo, signalRepo repo.SignalRepo, opts ...Option) *Scanner {
	scanner := &Scanner{
		analyzer:   analyzer,
		historySvc: historySvc,
		alertGate:  alertGate,
		notifier:   consoleNotifier{},
		itemRepo:   itemRepo,
		tickRepo:   tickRepo,
		signalRepo: signalRepo,
		stats:      Stats{Since: time.Now()},
	}
	for _, opt := range opts {
		opt(scanner)
	}
	return scanner
}

// Scan processes items sequentially in the order given. One in-flight request
// per endpoint at a time is what the rate gate assumes, so there is no
// fan-out here.
func (s *Scanner) Scan(ctx context.Context, items []market.Snapshot) error {
	for i, snap := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		slog.Info("analyzing item", "item", snap.MarketHashName, "progress", fmt.Sprintf("%d/%d", i+1, len(items)))
		if err := s.scanOne(ctx, snap); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			slog.Error("failed to process item", "item", snap.MarketHashName, "error", err)
		}
		s.statsMu.Lock()
		s.stats.ItemsScanned++
		s.statsMu.Unlock()
	}
	return nil
}

func (s *Scanner) scanOne(ctx context.Context, snap market.Snapshot) error {
	item, err := s.itemRepo.GetOrCreate(ctx, entity.Item{MarketHashName: snap.MarketHashName})
	if err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}

	if !snap.Price.IsZero() {
		_, err = s.tickRepo.Create(ctx, entity.PriceTick{
			ItemId:    item.Id,
			Price:     snap.Price.String(),
			Quantity:  snap.Quantity,
			Source:    "skinport",
			Timestamp: snap.Time,
		})
		if err != nil {
			slog.Error("failed to save price tick", "item", snap.MarketHashName, "error", err)
		}
	}

	history, err := s.historySvc.FetchHistory(ctx, snap.MarketHashName)
	if err != nil {
		var throttled *market.ThrottledError
		switch {
		case errors.As(err, &throttled):
			// deliberately no retry: the next cycle picks the item up again
			slog.Warn("history fetch throttled, deferring item to next scan", "item", snap.MarketHashName)
			return nil
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return err
		default:
			slog.Error("failed to fetch history", "item", snap.MarketHashName, "error", err)
			return nil
		}
	}

	// keep a median-based tick as well, so local history accumulates volume
	if !history.Last24Hours.Median.IsZero() {
		_, err = s.tickRepo.Create(ctx, entity.PriceTick{
			ItemId:    item.Id,
			Price:     history.Last24Hours.Median.String(),
			Volume:    history.Last24Hours.Volume,
			Source:    "skinport",
			Timestamp: snap.Time,
		})
		if err != nil {
			slog.Error("failed to save stats tick", "item", snap.MarketHashName, "error", err)
		}
	}

	signal, err := s.analyzer.Analyze(ctx, snap, history)
	if err != nil {
		if errors.Is(err, strategy.ErrNoCurrentPrice) || errors.Is(err, strategy.ErrInsufficientHistory) {
			slog.Debug("item not evaluable", "item", snap.MarketHashName, "reason", err)
			return nil
		}
		return fmt.Errorf("analyze: %w", err)
	}

	if signal.Type == strategy.NoSignal {
		return nil
	}

	// InsufficientVolume is persisted for auditing but never alerted.
	signalId, err := s.signalRepo.Create(ctx, entity.Signal{
		ItemId:       item.Id,
		SignalType:   string(signal.Type),
		Price:        signal.CurrentPrice.String(),
		DeviationPct: signal.DeviationPct.InexactFloat64(),
		NetEdgePct:   signal.NetEdgePct.InexactFloat64(),
		Volume24h:    signal.Volume24h,
		Confidence:   signal.Confidence,
		Reason:       signal.Reason,
		CreatedAt:    signal.Timestamp,
	})
	if err != nil {
		slog.Error("failed to save signal", "item", snap.MarketHashName, "signal", signal.Type, "error", err)
	}

	if !signal.Type.Actionable() {
		return nil
	}

	s.statsMu.Lock()
	s.stats.SignalsDetected++
	s.statsMu.Unlock()
	slog.Info("signal detected", "item", snap.MarketHashName, "type", signal.Type,
		"deviation", signal.DeviationPct.StringFixed(2), "edge", signal.NetEdgePct.StringFixed(2))

	if !s.alertGate.ShouldSend(snap.MarketHashName, signal.Type) {
		slog.Info("alert suppressed by anti-spam window", "item", snap.MarketHashName, "type", signal.Type)
		return nil
	}

	// a failed delivery still consumed the anti-spam window above
	if err := s.notifier.Notify(ctx, signal); err != nil {
		slog.Error("failed to deliver alert", "item", snap.MarketHashName, "error", err)
		return nil
	}

	s.statsMu.Lock()
	s.stats.AlertsSent++
	s.statsMu.Unlock()
	if signalId != 0 {
		if err := s.signalRepo.MarkAlerted(ctx, signalId); err != nil {
			slog.Error("failed to mark signal alerted", "signal_id", signalId, "error", err)
		}
	}
	return nil
}

func (s *Scanner) SnapshotAndReset() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	out := s.stats
	s.stats = Stats{Since: time.Now()}
	return out
}

package strategy

import (
	"context"
	"errors"
	"time"

	"github.com/Hitojaa/skinport-trader/internal/service/market"
	"github.com/shopspring/decimal"
)

type SignalType string

const (
	// Underpriced price sits far enough below the 7d median to be worth buying
	Underpriced SignalType = "UNDERPRICED"
	// Momentum 24h mean running ahead of the 7d mean on real volume
	Momentum SignalType = "MOMENTUM"
	// NoSignal nothing notable this cycle
	NoSignal SignalType = "NO_SIGNAL"
	// InsufficientVolume data too thin to trust. Surfaced rather than dropped
	// so auditing can tell "nothing happened" from "could not evaluate".
	InsufficientVolume SignalType = "INSUFFICIENT_VOLUME"
)

// Actionable reports whether a signal of this type may reach the alert gate.
func (t SignalType) Actionable() bool {
	return t == Underpriced || t == Momentum
}

// Signal is the immutable result of evaluating one item against its history.
type Signal struct {
	MarketHashName string
	Type           SignalType
	CurrentPrice   decimal.Decimal
	Median7d       decimal.Decimal
	DeviationPct   decimal.Decimal // % the price sits below the 7d median
	NetEdgePct     decimal.Decimal // % profit after fee and slippage
	Volume24h      int
	Confidence     float64 // 0-100
	Reason         string
	Timestamp      time.Time
}

// Thresholds are the configured constants the engine evaluates against.
// Fee and Slippage are fractions of the sale price (0.12 = 12%).
type Thresholds struct {
	DropPct     decimal.Decimal
	MinEdgePct  decimal.Decimal
	MinVolume24 int
	MomentumPct decimal.Decimal
	Fee         decimal.Decimal
	Slippage    decimal.Decimal
}

var (
	// ErrNoCurrentPrice the item has no listed price, nothing to evaluate
	ErrNoCurrentPrice = errors.New("no current price available")
	// ErrInsufficientHistory required 7d aggregate fields missing or zero
	ErrInsufficientHistory = errors.New("insufficient history to evaluate")
)

type Analyzer interface {
	Analyze(ctx context.Context, snapshot market.Snapshot, history market.SalesHistory) (Signal, error)
}

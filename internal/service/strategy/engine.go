package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/Hitojaa/skinport-trader/internal/service/market"
	"github.com/Hitojaa/skinport-trader/pkg/decimalx"
	"github.com/shopspring/decimal"
)

var (
	confidenceFloor   = decimal.Zero
	underpricedCap    = decimal.NewFromInt(95)
	momentumCap       = decimal.NewFromInt(90)
	momentumConfScale = decimal.NewFromInt(5)
)

type ruleBasedEngine struct {
	th  Thresholds
	now func() time.Time
}

type Option func(e *ruleBasedEngine)

// WithNow pins the output timestamp, for replay tests.
func WithNow(now func() time.Time) Option {
	return func(e *ruleBasedEngine) {
		e.now = now
	}
}

func NewRuleBasedEngine(th Thresholds, opts ...Option) Analyzer {
	engine := &ruleBasedEngine{
		th:  th,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Analyze classifies one (snapshot, history) pair. Apart from the output
// timestamp it depends only on its inputs and the configured thresholds, so
// identical inputs always classify identically.
func (e *ruleBasedEngine) Analyze(ctx context.Context, snapshot market.Snapshot, history market.SalesHistory) (Signal, error) {
	price := snapshot.Price
	if price.LessThanOrEqual(decimal.Zero) {
		return Signal{}, ErrNoCurrentPrice
	}

	volume24 := history.Last24Hours.Volume
	if volume24 < e.th.MinVolume24 {
		return Signal{
			MarketHashName: snapshot.MarketHashName,
			Type:           InsufficientVolume,
			CurrentPrice:   price,
			DeviationPct:   decimal.Zero,
			NetEdgePct:     decimal.Zero,
			Volume24h:      volume24,
			Confidence:     0,
			Reason:         fmt.Sprintf("insufficient volume (%d sales/24h, need %d)", volume24, e.th.MinVolume24),
			Timestamp:      e.now(),
		}, nil
	}

	median7 := history.Last7Days.Median
	avg7 := history.Last7Days.Avg
	if median7.IsZero() || avg7.IsZero() {
		return Signal{}, ErrInsufficientHistory
	}

	deviationPct := decimalx.PctBelow(price, median7)
	netEdgePct := e.netEdge(price, median7)

	// UNDERPRICED: price below median by the drop threshold with real edge left
	// after fees. A price above the median can never be underpriced this cycle.
	if !deviationPct.IsNegative() &&
		deviationPct.GreaterThanOrEqual(e.th.DropPct) &&
		netEdgePct.GreaterThanOrEqual(e.th.MinEdgePct) {
		confidence := decimalx.Clamp(deviationPct, confidenceFloor, underpricedCap)
		return Signal{
			MarketHashName: snapshot.MarketHashName,
			Type:           Underpriced,
			CurrentPrice:   price,
			Median7d:       median7,
			DeviationPct:   deviationPct,
			NetEdgePct:     netEdgePct,
			Volume24h:      volume24,
			Confidence:     confidence.InexactFloat64(),
			Reason: fmt.Sprintf("price %s%% below 7d median, net edge %s%%",
				deviationPct.StringFixed(1), netEdgePct.StringFixed(1)),
			Timestamp: e.now(),
		}, nil
	}

	// MOMENTUM: 24h mean running ahead of the 7d mean on elevated volume.
	avg24 := history.Last24Hours.Avg
	if !avg24.IsZero() {
		momentumPct := decimalx.PctAbove(avg24, avg7)
		if momentumPct.GreaterThanOrEqual(e.th.MomentumPct) &&
			float64(volume24) >= 1.5*float64(e.th.MinVolume24) {
			confidence := decimalx.Clamp(momentumPct.Mul(momentumConfScale), confidenceFloor, momentumCap)
			return Signal{
				MarketHashName: snapshot.MarketHashName,
				Type:           Momentum,
				CurrentPrice:   price,
				Median7d:       median7,
				DeviationPct:   deviationPct,
				NetEdgePct:     netEdgePct,
				Volume24h:      volume24,
				Confidence:     confidence.InexactFloat64(),
				Reason: fmt.Sprintf("24h mean %s%% above 7d mean on high volume",
					momentumPct.StringFixed(1)),
				Timestamp: e.now(),
			}, nil
		}
	}

	return Signal{
		MarketHashName: snapshot.MarketHashName,
		Type:           NoSignal,
		CurrentPrice:   price,
		Median7d:       median7,
		DeviationPct:   deviationPct,
		NetEdgePct:     netEdgePct,
		Volume24h:      volume24,
		Confidence:     0,
		Timestamp:      e.now(),
	}, nil
}

// netEdge is the profit of buying at price and reselling at the 7d median,
// minus fee and slippage (both charged on the sale price), as a percentage
// of the buy price.
func (e *ruleBasedEngine) netEdge(price, median7 decimal.Decimal) decimal.Decimal {
	gross := median7.Sub(price)
	costs := median7.Mul(e.th.Fee).Add(median7.Mul(e.th.Slippage))
	return gross.Sub(costs).Div(price).Mul(decimal.NewFromInt(100))
}

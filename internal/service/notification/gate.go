package notification

import (
	"sync"
	"time"

	"github.com/Hitojaa/skinport-trader/internal/service/strategy"
)

// Gate is the anti-spam ledger. It decides, per (item, signal type), whether
// a notification attempt may be made now, and records a positive decision
// immediately so concurrent checks on the same key cannot both pass.
//
// The gate is channel-agnostic: a failed delivery downstream still consumes
// the window, which keeps a misconfigured webhook from being hammered on
// every cycle.
type Gate struct {
	mu          sync.Mutex
	minInterval time.Duration
	lastSent    map[string]time.Time
	now         func() time.Time
}

type GateOption func(g *Gate)

// WithGateNow replaces the wall clock, for tests.
func WithGateNow(now func() time.Time) GateOption {
	return func(g *Gate) {
		g.now = now
	}
}

func NewGate(minInterval time.Duration, opts ...GateOption) *Gate {
	gate := &Gate{
		minInterval: minInterval,
		lastSent:    make(map[string]time.Time),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(gate)
	}
	return gate
}

// ShouldSend reports whether an alert for (item, signal type) may go out now,
// recording the send time when it may. Callers must only pass actionable
// signal types; filtering the rest is the scan loop's job.
func (g *Gate) ShouldSend(marketHashName string, typ strategy.SignalType) bool {
	key := marketHashName + "|" + string(typ)

	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if last, ok := g.lastSent[key]; ok && now.Sub(last) < g.minInterval {
		return false
	}
	g.lastSent[key] = now
	return true
}

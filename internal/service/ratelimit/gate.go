package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultThrottleFallback is applied when the provider signals throttling
// without a Retry-After. Skinport escalates bans on repeat offenders, so the
// fallback stays in minutes.
const DefaultThrottleFallback = 5 * time.Minute

// Gate paces outbound requests per logical endpoint key. It enforces a
// minimum interval between grants on the same key and absorbs provider
// throttle signals as one-shot overrides of that interval.
//
// A Gate never fails; it only delays. Retry policy belongs to the caller.
// One Gate instance must be shared by everything that talks to the same
// provider credentials.
type Gate struct {
	mu          sync.Mutex
	minInterval time.Duration
	fallback    time.Duration
	lastRequest map[string]time.Time
	notBefore   map[string]time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

type Option func(g *Gate)

// WithClock replaces the wall clock and sleep, for simulated-time tests.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(g *Gate) {
		g.now = now
		g.sleep = sleep
	}
}

// WithThrottleFallback overrides the delay used when the provider suggests none.
func WithThrottleFallback(d time.Duration) Option {
	return func(g *Gate) {
		g.fallback = d
	}
}

func NewGate(minInterval time.Duration, opts ...Option) *Gate {
	gate := &Gate{
		minInterval: minInterval,
		fallback:    DefaultThrottleFallback,
		lastRequest: make(map[string]time.Time),
		notBefore:   make(map[string]time.Time),
		now:         time.Now,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(gate)
	}
	return gate
}

// AwaitSlot blocks until a request on key is allowed, then records the grant.
// The slot is reserved at the grant time, not when the caller finishes, so
// concurrent callers on the same key serialize regardless of request latency.
// The first call for a key returns immediately. The only error is ctx's.
func (g *Gate) AwaitSlot(ctx context.Context, key string) error {
	g.mu.Lock()
	now := g.now()
	grant := now
	if last, ok := g.lastRequest[key]; ok {
		if next := last.Add(g.minInterval); next.After(grant) {
			grant = next
		}
	}
	if nb, ok := g.notBefore[key]; ok {
		if nb.After(grant) {
			grant = nb
		}
		delete(g.notBefore, key)
	}
	g.lastRequest[key] = grant
	g.mu.Unlock()

	wait := grant.Sub(now)
	if wait <= 0 {
		return nil
	}
	slog.Debug("rate gate waiting", "endpoint", key, "wait", wait)
	return g.sleep(ctx, wait)
}

// RegisterThrottle forces the next AwaitSlot on key to wait at least the
// suggested delay from now. A zero or negative suggestion falls back to a
// conservative default: under-waiting risks escalating bans.
func (g *Gate) RegisterThrottle(key string, suggested time.Duration) {
	if suggested <= 0 {
		suggested = g.fallback
	}
	g.mu.Lock()
	g.notBefore[key] = g.now().Add(suggested)
	g.mu.Unlock()
	slog.Warn("provider throttled, backing off", "endpoint", key, "delay", suggested)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

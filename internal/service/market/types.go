package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot 物品当前行情
type Snapshot struct {
	MarketHashName string
	Currency       string
	Price          decimal.Decimal // lowest listed price
	Quantity       int             // listings available
	Time           time.Time
}

// WindowStats provider-supplied summary statistics over one trailing window.
// The engine consumes these as-is and never recomputes them from raw sales.
type WindowStats struct {
	Volume int
	Avg    decimal.Decimal
	Median decimal.Decimal
	Min    decimal.Decimal
	Max    decimal.Decimal
}

// SalesHistory 物品历史成交统计
type SalesHistory struct {
	MarketHashName string
	Currency       string
	Last24Hours    WindowStats
	Last7Days      WindowStats
	Last30Days     WindowStats
	Last90Days     WindowStats
}

// ErrItemNotFound means the subject has no current listing. Not retried;
// there is simply nothing to evaluate this cycle.
var ErrItemNotFound = errors.New("item not found in listing")

// ThrottledError is a provider-side rate limit. The rate gate has already
// been updated by the time a caller sees it.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("throttled by provider, retry after %s", e.RetryAfter)
}

// TransientError covers malformed responses and unexpected statuses. The
// subject is skipped for the cycle; the scan continues.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient provider error: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

type ItemService interface {
	// ListItems returns a snapshot of every listed item in one request.
	ListItems(ctx context.Context) ([]Snapshot, error)
	// FetchSnapshot returns the snapshot for a single item, or ErrItemNotFound.
	FetchSnapshot(ctx context.Context, marketHashName string) (Snapshot, error)
}

type HistoryService interface {
	FetchHistory(ctx context.Context, marketHashName string) (SalesHistory, error)
}

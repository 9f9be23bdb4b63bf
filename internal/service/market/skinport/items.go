package skinport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Hitojaa/skinport-trader/internal/service/market"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var _ market.ItemService = (*Service)(nil)

type listedItem struct {
	MarketHashName string   `json:"market_hash_name"`
	Currency       string   `json:"currency"`
	MinPrice       *float64 `json:"min_price"`
	MaxPrice       *float64 `json:"max_price"`
	MeanPrice      *float64 `json:"mean_price"`
	Quantity       int      `json:"quantity"`
}

// ListItems returns the full current listing. The items endpoint is cheap to
// retry relative to the scan cadence, so a throttled attempt is retried once
// after the forced wait.
func (s *Service) ListItems(ctx context.Context) ([]market.Snapshot, error) {
	items, err := s.listItems(ctx)
	var throttled *market.ThrottledError
	if errors.As(err, &throttled) {
		slog.Info("retrying item listing after throttle wait")
		items, err = s.listItems(ctx)
	}
	return items, err
}

func (s *Service) listItems(ctx context.Context) ([]market.Snapshot, error) {
	if err := s.gate.AwaitSlot(ctx, endpointItems); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("app_id", strconv.Itoa(s.cfg.AppID))
	params.Set("currency", s.cfg.Currency)

	req, err := s.newRequest(ctx, endpointItems, params)
	if err != nil {
		return nil, &market.TransientError{Err: err}
	}
	resp, err := s.cli.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &market.TransientError{Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var items []listedItem
		if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
			return nil, &market.TransientError{Err: fmt.Errorf("decode item listing: %w", err)}
		}
		observed := s.now()
		return lo.Map(items, func(item listedItem, index int) market.Snapshot {
			snap := market.Snapshot{
				MarketHashName: item.MarketHashName,
				Currency:       item.Currency,
				Quantity:       item.Quantity,
				Time:           observed,
			}
			if item.MinPrice != nil {
				snap.Price = decimal.NewFromFloat(*item.MinPrice)
			}
			return snap
		}), nil
	case http.StatusTooManyRequests:
		delay := retryAfter(resp)
		s.gate.RegisterThrottle(endpointItems, delay)
		return nil, &market.ThrottledError{RetryAfter: delay}
	default:
		return nil, transientStatus(endpointItems, resp)
	}
}

// FetchSnapshot looks a single item up in the current listing.
func (s *Service) FetchSnapshot(ctx context.Context, marketHashName string) (market.Snapshot, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return market.Snapshot{}, err
	}
	for _, item := range items {
		if item.MarketHashName == marketHashName {
			return item, nil
		}
	}
	return market.Snapshot{}, market.ErrItemNotFound
}

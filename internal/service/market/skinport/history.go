package skinport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/Hitojaa/skinport-trader/internal/service/market"
	"github.com/shopspring/decimal"
)

var _ market.HistoryService = (*Service)(nil)

type windowStats struct {
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	Avg    *float64 `json:"avg"`
	Median *float64 `json:"median"`
	Volume int      `json:"volume"`
}

type salesHistory struct {
	MarketHashName string      `json:"market_hash_name"`
	Currency       string      `json:"currency"`
	Last24Hours    windowStats `json:"last_24_hours"`
	Last7Days      windowStats `json:"last_7_days"`
	Last30Days     windowStats `json:"last_30_days"`
	Last90Days     windowStats `json:"last_90_days"`
}

// FetchHistory returns the aggregate sales statistics for one item.
// A throttled attempt is not retried here: the history endpoint is the
// expensive one, and blocking a whole scan on it is not worth it. The
// caller defers to the next cycle.
func (s *Service) FetchHistory(ctx context.Context, marketHashName string) (market.SalesHistory, error) {
	if err := s.gate.AwaitSlot(ctx, endpointSalesHistory); err != nil {
		return market.SalesHistory{}, err
	}

	params := url.Values{}
	params.Set("market_hash_name", marketHashName)
	params.Set("app_id", fmt.Sprint(s.cfg.AppID))
	params.Set("currency", s.cfg.Currency)

	req, err := s.newRequest(ctx, endpointSalesHistory, params)
	if err != nil {
		return market.SalesHistory{}, &market.TransientError{Err: err}
	}
	resp, err := s.cli.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return market.SalesHistory{}, ctx.Err()
		}
		return market.SalesHistory{}, &market.TransientError{Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return market.SalesHistory{}, &market.TransientError{Err: err}
		}
		history, err := decodeHistory(raw)
		if err != nil {
			return market.SalesHistory{}, &market.TransientError{Err: err}
		}
		return history, nil
	case http.StatusTooManyRequests:
		delay := retryAfter(resp)
		s.gate.RegisterThrottle(endpointSalesHistory, delay)
		return market.SalesHistory{}, &market.ThrottledError{RetryAfter: delay}
	default:
		return market.SalesHistory{}, transientStatus(endpointSalesHistory, resp)
	}
}

// decodeHistory normalizes the provider quirk where a single aggregate
// object is sometimes wrapped in a one-element list.
func decodeHistory(raw []byte) (market.SalesHistory, error) {
	trimmed := bytes.TrimSpace(raw)
	var sh salesHistory
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var wrapped []salesHistory
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return market.SalesHistory{}, fmt.Errorf("decode sales history list: %w", err)
		}
		if len(wrapped) == 0 {
			return market.SalesHistory{}, fmt.Errorf("empty sales history response")
		}
		sh = wrapped[0]
	} else {
		if err := json.Unmarshal(trimmed, &sh); err != nil {
			return market.SalesHistory{}, fmt.Errorf("decode sales history: %w", err)
		}
	}
	return market.SalesHistory{
		MarketHashName: sh.MarketHashName,
		Currency:       sh.Currency,
		Last24Hours:    convertWindow(sh.Last24Hours),
		Last7Days:      convertWindow(sh.Last7Days),
		Last30Days:     convertWindow(sh.Last30Days),
		Last90Days:     convertWindow(sh.Last90Days),
	}, nil
}

func convertWindow(w windowStats) market.WindowStats {
	stats := market.WindowStats{Volume: w.Volume}
	if w.Avg != nil {
		stats.Avg = decimal.NewFromFloat(*w.Avg)
	}
	if w.Median != nil {
		stats.Median = decimal.NewFromFloat(*w.Median)
	}
	if w.Min != nil {
		stats.Min = decimal.NewFromFloat(*w.Min)
	}
	if w.Max != nil {
		stats.Max = decimal.NewFromFloat(*w.Max)
	}
	return stats
}

package skinport

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Hitojaa/skinport-trader/internal/service/market"
)

const maxLoggedBody = 200

// retryAfter reads the suggested wait from a 429 response.
// Zero means the provider suggested nothing; the gate applies its fallback.
func retryAfter(resp *http.Response) time.Duration {
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// transientStatus turns an unexpected status into a TransientError, logging
// a truncated body for diagnostics. The caller does not retry.
func transientStatus(endpoint string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
	slog.Error("unexpected provider status",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"body", string(body))
	return &market.TransientError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
}

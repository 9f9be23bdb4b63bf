package discord

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Hitojaa/skinport-trader/internal/service/strategy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Notify(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	svc := NewService(srv.URL, WithHTTPClient(srv.Client()))
	err := svc.Notify(context.Background(), strategy.Signal{
		MarketHashName: "AK-47 | Redline (Field-Tested)",
		Type:           strategy.Underpriced,
		CurrentPrice:   decimal.NewFromFloat(26.50),
		Median7d:       decimal.NewFromFloat(32.00),
		DeviationPct:   decimal.NewFromFloat(17.19),
		NetEdgePct:     decimal.NewFromFloat(5.06),
		Volume24h:      15,
		Confidence:     17.19,
		Reason:         "price 17.2% below 7d median, net edge 5.1%",
	})
	require.NoError(t, err)

	require.Len(t, got.Embeds, 1)
	assert.Contains(t, got.Embeds[0].Description, "AK-47 | Redline (Field-Tested)")
	assert.Equal(t, "price 17.2% below 7d median, net edge 5.1%", got.Embeds[0].Footer.Text)
	assert.Len(t, got.Embeds[0].Fields, 6)
}

func TestService_NotifyErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("unknown webhook"))
	}))
	defer srv.Close()

	svc := NewService(srv.URL, WithHTTPClient(srv.Client()))
	err := svc.NotifyText(context.Background(), "hello")
	assert.ErrorContains(t, err, "status 404")
}

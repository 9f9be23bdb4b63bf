package skinport

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"time"

	"github.com/Hitojaa/skinport-trader/internal/service/ratelimit"
)

const (
	DefaultBaseURL = "https://api.skinport.com/v1"

	// CS2
	DefaultAppID    = 730
	DefaultCurrency = "EUR"

	endpointItems        = "/items"
	endpointSalesHistory = "/sales/history"
)

type Config struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	BaseURL      string `mapstructure:"base_url"`
	AppID        int    `mapstructure:"app_id"`
	Currency     string `mapstructure:"currency"`
}

// Service talks to the Skinport public API through a shared rate gate.
// It is stateless apart from gate bookkeeping; callers own persistence.
type Service struct {
	cfg  Config
	gate *ratelimit.Gate
	cli  *http.Client
	now  func() time.Time
}

type Option func(s *Service)

func WithHTTPClient(cli *http.Client) Option {
	return func(s *Service) {
		s.cli = cli
	}
}

func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(cfg Config, gate *ratelimit.Gate, opts ...Option) *Service {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.AppID == 0 {
		cfg.AppID = DefaultAppID
	}
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	svc := &Service{
		cfg:  cfg,
		gate: gate,
		cli:  &http.Client{Timeout: 30 * time.Second},
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) newRequest(ctx context.Context, endpoint string, params url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if s.cfg.ClientID != "" && s.cfg.ClientSecret != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(s.cfg.ClientID + ":" + s.cfg.ClientSecret))
		req.Header.Set("Authorization", "Basic "+credentials)
	}
	return req, nil
}

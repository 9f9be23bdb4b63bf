package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Hitojaa/skinport-trader/internal/service/notification"
	"github.com/Hitojaa/skinport-trader/internal/service/strategy"
)

const defaultAPIBase = "https://api.telegram.org"

var _ notification.Notifier = (*Service)(nil)

// Service delivers alerts through a Telegram bot.
type Service struct {
	apiBase  string
	botToken string
	chatID   string
	cli      *http.Client
}

type Option func(s *Service)

func WithHTTPClient(cli *http.Client) Option {
	return func(s *Service) {
		s.cli = cli
	}
}

func WithAPIBase(apiBase string) Option {
	return func(s *Service) {
		s.apiBase = apiBase
	}
}

func NewService(botToken, chatID string, opts ...Option) *Service {
	svc := &Service{
		apiBase:  defaultAPIBase,
		botToken: botToken,
		chatID:   chatID,
		cli:      &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) Notify(ctx context.Context, signal strategy.Signal) error {
	text := fmt.Sprintf("*%s*\n%s\nprice: %s EUR | 7d median: %s EUR\ndeviation: %s%% | net edge: %s%%\nvolume 24h: %d | confidence: %.0f%%\n%s",
		signal.Type,
		signal.MarketHashName,
		signal.CurrentPrice.StringFixed(2),
		signal.Median7d.StringFixed(2),
		signal.DeviationPct.StringFixed(1),
		signal.NetEdgePct.StringFixed(1),
		signal.Volume24h,
		signal.Confidence,
		signal.Reason)
	return s.sendMessage(ctx, text)
}

func (s *Service) NotifyText(ctx context.Context, text string) error {
	return s.sendMessage(ctx, text)
}

func (s *Service) sendMessage(ctx context.Context, text string) error {
	payload := map[string]string{
		"chat_id":    s.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.cli.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

package discord

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

const defaultUsername = "Skinport Tracker"

var _ notification.Notifier = (*Service)(nil)

// Service posts alerts to a Discord webhook as rich embeds.
type Service struct {
	webhookURL string
	username   string
	cli        *http.Client
}

type Option func(s *Service)

func WithHTTPClient(cli *http.Client) Option {
	return func(s *Service) {
		s.cli = cli
	}
}

func WithUsername(username string) Option {
	return func(s *Service) {
		s.username = username
	}
}

func NewService(webhookURL string, opts ...Option) *Service {
	svc := &Service{
		webhookURL: webhookURL,
		username:   defaultUsername,
		cli:        &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields"`
	Footer      struct {
		Text string `json:"text"`
	} `json:"footer"`
	Timestamp string `json:"timestamp"`
}

type webhookPayload struct {
	Content  string  `json:"content,omitempty"`
	Username string  `json:"username"`
	Embeds   []embed `json:"embeds,omitempty"`
}

func (s *Service) Notify(ctx context.Context, signal strategy.Signal) error {
	e := embed{
		Title:       fmt.Sprintf("%s signal", signal.Type),
		Description: fmt.Sprintf("**%s**", signal.MarketHashName),
		Color:       0x00ff00,
		Fields: []embedField{
			{Name: "Current price", Value: fmt.Sprintf("`%s EUR`", signal.CurrentPrice.StringFixed(2)), Inline: true},
			{Name: "7d median", Value: fmt.Sprintf("`%s EUR`", signal.Median7d.StringFixed(2)), Inline: true},
			{Name: "Deviation", Value: fmt.Sprintf("`%s%%`", signal.DeviationPct.StringFixed(1)), Inline: true},
			{Name: "Net edge", Value: fmt.Sprintf("`%s%%`", signal.NetEdgePct.StringFixed(1)), Inline: true},
			{Name: "Volume 24h", Value: fmt.Sprintf("`%d sales`", signal.Volume24h), Inline: true},
			{Name: "Confidence", Value: fmt.Sprintf("`%.0f%%`", signal.Confidence), Inline: true},
		},
		Timestamp: signal.Timestamp.Format(time.RFC3339),
	}
	e.Footer.Text = signal.Reason

	return s.post(ctx, webhookPayload{Username: s.username, Embeds: []embed{e}})
}

func (s *Service) NotifyText(ctx context.Context, text string) error {
	return s.post(ctx, webhookPayload{Username: s.username, Content: text})
}

func (s *Service) post(ctx context.Context, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.cli.Do(req)
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("discord webhook status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

package ioc

import (
	"time"

	"github.com/Hitojaa/skinport-trader/internal/service/notification"
	"github.com/Hitojaa/skinport-trader/internal/service/notification/discord"
	"github.com/Hitojaa/skinport-trader/internal/service/notification/telegram"
	"github.com/spf13/viper"
)

// InitNotifier assembles the configured channels into one fanout. With no
// channel configured it returns nil and the scan loop falls back to console
// output.
func InitNotifier() notification.Notifier {
	type Config struct {
		Discord struct {
			WebhookURL string `mapstructure:"webhook_url"`
			Username   string `mapstructure:"username"`
		} `mapstructure:"discord"`
		Telegram struct {
			BotToken string `mapstructure:"bot_token"`
			ChatID   string `mapstructure:"chat_id"`
		} `mapstructure:"telegram"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("alerts", &cfg); err != nil {
		panic(err)
	}

	var notifiers []notification.Notifier
	if cfg.Discord.WebhookURL != "" {
		var opts []discord.Option
		if cfg.Discord.Username != "" {
			opts = append(opts, discord.WithUsername(cfg.Discord.Username))
		}
		notifiers = append(notifiers, discord.NewService(cfg.Discord.WebhookURL, opts...))
	}
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notifiers = append(notifiers, telegram.NewService(cfg.Telegram.BotToken, cfg.Telegram.ChatID))
	}

	if len(notifiers) == 0 {
		return nil
	}
	return notification.NewFanout(notifiers...)
}

func InitAlertGate() *notification.Gate {
	minInterval := viper.GetDuration("alerts.min_alert_interval")
	if minInterval <= 0 {
		minInterval = 30 * time.Minute
	}
	return notification.NewGate(minInterval)
}

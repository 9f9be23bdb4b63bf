package ioc

import (
	"github.com/Hitojaa/skinport-trader/internal/service/strategy"
	"github.com/Hitojaa/skinport-trader/pkg/decimalx"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

func InitThresholds() strategy.Thresholds {
	type Config struct {
		DropPct     string `mapstructure:"drop_pct"`
		MinEdgePct  string `mapstructure:"min_edge_pct"`
		MinVolume24 int    `mapstructure:"min_volume_24h"`
		MomentumPct string `mapstructure:"momentum_pct"`
		Fee         string `mapstructure:"fee"`
		Slippage    string `mapstructure:"slippage"`
	}

	cfg := Config{
		DropPct:     "15",
		MinEdgePct:  "3",
		MinVolume24: 5,
		MomentumPct: "10",
		Fee:         "0.12",
		Slippage:    "0.01",
	}
	if err := viper.UnmarshalKey("strategy", &cfg); err != nil {
		panic(err)
	}

	return strategy.Thresholds{
		DropPct:     decimalx.MustFromString(cfg.DropPct),
		MinEdgePct:  decimalx.MustFromString(cfg.MinEdgePct),
		MinVolume24: cfg.MinVolume24,
		MomentumPct: decimalx.MustFromString(cfg.MomentumPct),
		Fee:         decimalx.MustFromString(cfg.Fee),
		Slippage:    decimalx.MustFromString(cfg.Slippage),
	}
}

func InitWorkingSetMaxPrice() decimal.Decimal {
	raw := viper.GetString("collector.max_item_price")
	if raw == "" {
		return decimal.Zero
	}
	return decimalx.MustFromString(raw)
}

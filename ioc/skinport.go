package ioc

import (
	"time"

	"github.com/Hitojaa/skinport-trader/internal/service/market/skinport"
	"github.com/Hitojaa/skinport-trader/internal/service/ratelimit"
	"github.com/spf13/viper"
)

func InitRateGate() *ratelimit.Gate {
	type Config struct {
		MinRequestInterval time.Duration `mapstructure:"min_request_interval"`
		ThrottleFallback   time.Duration `mapstructure:"throttle_fallback"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("collector", &cfg); err != nil {
		panic(err)
	}
	if cfg.MinRequestInterval <= 0 {
		cfg.MinRequestInterval = 45 * time.Second
	}

	var opts []ratelimit.Option
	if cfg.ThrottleFallback > 0 {
		opts = append(opts, ratelimit.WithThrottleFallback(cfg.ThrottleFallback))
	}
	return ratelimit.NewGate(cfg.MinRequestInterval, opts...)
}

func InitSkinportService(gate *ratelimit.Gate) *skinport.Service {
	var cfg skinport.Config
	if err := viper.UnmarshalKey("skinport", &cfg); err != nil {
		panic(err)
	}
	return skinport.NewService(cfg, gate)
}

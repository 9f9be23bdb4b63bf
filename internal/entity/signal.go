package entity

import (
	"time"
)

// Signal 检测到的交易信号
type Signal struct {
	Id           int64  `gorm:"primaryKey;autoIncrement"`
	ItemId       int64  `gorm:"index"`
	SignalType   string `gorm:"index"` // UNDERPRICED, MOMENTUM, INSUFFICIENT_VOLUME
	Price        string
	DeviationPct float64
	NetEdgePct   float64
	Volume24h    int
	Confidence   float64 // 0-100
	Reason       string
	Alerted      bool      `gorm:"index"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

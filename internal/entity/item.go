package entity

import (
	"time"
)

// Item CS2市场物品
type Item struct {
	Id             int64  `gorm:"primaryKey;autoIncrement"`
	MarketHashName string `gorm:"uniqueIndex"`
	Category       string
	Type           string // weapon, sticker, case ...
	Rarity         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PriceTick a single observed price point for an item
type PriceTick struct {
	Id        int64  `gorm:"primaryKey;autoIncrement"`
	ItemId    int64  `gorm:"index:idx_tick_item_time"`
	Price     string // EUR
	Volume    int    // sales in the window the tick was derived from, 0 for listing ticks
	Quantity  int    // listings available at observation time
	Source    string `gorm:"default:skinport"`
	Timestamp time.Time `gorm:"index:idx_tick_item_time"`
}

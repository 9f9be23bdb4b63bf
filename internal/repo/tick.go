package repo

import (
	"context"
	"time"

	"github.com/Hitojaa/skinport-trader/internal/entity"
	"gorm.io/gorm"
)

type TickRepo interface {
	Create(ctx context.Context, tick entity.PriceTick) (int64, error)
	FindSince(ctx context.Context, itemId int64, since time.Time) ([]entity.PriceTick, error)
}

type tickRepo struct {
	db *gorm.DB
}

func NewTickRepo(db *gorm.DB) TickRepo {
	return &tickRepo{
		db: db,
	}
}

func (r *tickRepo) Create(ctx context.Context, tick entity.PriceTick) (int64, error) {
	err := r.db.WithContext(ctx).Create(&tick).Error
	if err != nil {
		return 0, err
	}
	return tick.Id, nil
}

func (r *tickRepo) FindSince(ctx context.Context, itemId int64, since time.Time) ([]entity.PriceTick, error) {
	var ticks []entity.PriceTick
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND timestamp >= ?", itemId, since).
		Order("timestamp DESC").
		Find(&ticks).Error
	if err != nil {
		return nil, err
	}
	return ticks, nil
}

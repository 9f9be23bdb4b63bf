package repo

import (
	"context"

	"github.com/Hitojaa/skinport-trader/internal/entity"
	"gorm.io/gorm"
)

type ItemRepo interface {
	GetOrCreate(ctx context.Context, item entity.Item) (entity.Item, error)
	FindByName(ctx context.Context, marketHashName string) (entity.Item, error)
}

type itemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) ItemRepo {
	return &itemRepo{
		db: db,
	}
}

func (r *itemRepo) GetOrCreate(ctx context.Context, item entity.Item) (entity.Item, error) {
	err := r.db.WithContext(ctx).
		Where("market_hash_name = ?", item.MarketHashName).
		FirstOrCreate(&item).Error
	if err != nil {
		return entity.Item{}, err
	}
	return item, nil
}

func (r *itemRepo) FindByName(ctx context.Context, marketHashName string) (entity.Item, error) {
	var item entity.Item
	err := r.db.WithContext(ctx).Where("market_hash_name = ?", marketHashName).First(&item).Error
	if err != nil {
		return entity.Item{}, err
	}
	return item, nil
}

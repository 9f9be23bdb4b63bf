package repo

import (
	"github.com/Hitojaa/skinport-trader/internal/entity"
	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(&entity.Item{}, &entity.PriceTick{}, &entity.Signal{})
}

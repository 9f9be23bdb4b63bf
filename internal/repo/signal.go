package repo

import (
	"context"

	"github.com/Hitojaa/skinport-trader/internal/entity"
	"gorm.io/gorm"
)

type SignalRepo interface {
	Create(ctx context.Context, signal entity.Signal) (int64, error)
	MarkAlerted(ctx context.Context, id int64) error
	FindUnalerted(ctx context.Context, limit int) ([]entity.Signal, error)
}

type signalRepo struct {
	db *gorm.DB
}

func NewSignalRepo(db *gorm.DB) SignalRepo {
	return &signalRepo{
		db: db,
	}
}

func (r *signalRepo) Create(ctx context.Context, signal entity.Signal) (int64, error) {
	err := r.db.WithContext(ctx).Create(&signal).Error
	if err != nil {
		return 0, err
	}
	return signal.Id, nil
}

func (r *signalRepo) MarkAlerted(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&entity.Signal{}).Where("id = ?", id).Update("alerted", true).Error
}

// FindUnalerted returns actionable signals that never made it to a channel,
// newest first. Non-actionable trap signals are excluded.
func (r *signalRepo) FindUnalerted(ctx context.Context, limit int) ([]entity.Signal, error) {
	var signals []entity.Signal
	err := r.db.WithContext(ctx).
		Where("alerted = ? AND signal_type != ?", false, "INSUFFICIENT_VOLUME").
		Order("created_at DESC").
		Limit(limit).
		Find(&signals).Error
	if err != nil {
		return nil, err
	}
	return signals, nil
}

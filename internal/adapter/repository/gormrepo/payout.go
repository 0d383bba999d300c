package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"merry/internal/domain/payout"
)

type PayoutRepository struct{ db *gorm.DB }

func NewPayoutRepository(db *gorm.DB) *PayoutRepository { return &PayoutRepository{db: db} }

func (r *PayoutRepository) Create(ctx context.Context, p *payout.Payout) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PayoutRepository) GetByID(ctx context.Context, id string) (*payout.Payout, error) {
	var out payout.Payout
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, notFound(err, "payout", id)
	}
	return &out, nil
}

func (r *PayoutRepository) GetByIDForUpdate(ctx context.Context, id string) (*payout.Payout, error) {
	var out payout.Payout
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, notFound(err, "payout", id)
	}
	return &out, nil
}

func (r *PayoutRepository) ExistsForPeriod(ctx context.Context, cycleID string, period int) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&payout.Payout{}).
		Where("cycle_id = ? AND period_number = ?", cycleID, period).
		Count(&n).Error
	return n > 0, err
}

func (r *PayoutRepository) ListByCycle(ctx context.Context, cycleID string) ([]payout.Payout, error) {
	var out []payout.Payout
	err := r.db.WithContext(ctx).
		Where("cycle_id = ?", cycleID).
		Order("period_number ASC").
		Find(&out).Error
	return out, err
}

func (r *PayoutRepository) SaveStatus(ctx context.Context, p *payout.Payout) error {
	return r.db.WithContext(ctx).Model(p).
		Select("status", "paid_at", "confirmed_at", "confirmed_by", "updated_at").
		Updates(p).Error
}

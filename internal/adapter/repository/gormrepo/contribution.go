package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"merry/internal/domain/contribution"
	"merry/internal/domain/cycle"
)

type ContributionRepository struct{ db *gorm.DB }

func NewContributionRepository(db *gorm.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

func (r *ContributionRepository) CreateBatch(ctx context.Context, cs []contribution.Contribution) error {
	if len(cs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&cs).Error
}

func (r *ContributionRepository) GetByID(ctx context.Context, id string) (*contribution.Contribution, error) {
	var out contribution.Contribution
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, notFound(err, "contribution", id)
	}
	return &out, nil
}

func (r *ContributionRepository) GetByIDForUpdate(ctx context.Context, id string) (*contribution.Contribution, error) {
	var out contribution.Contribution
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, notFound(err, "contribution", id)
	}
	return &out, nil
}

func (r *ContributionRepository) ListByCycle(ctx context.Context, cycleID string, period int) ([]contribution.Contribution, error) {
	var out []contribution.Contribution
	q := r.db.WithContext(ctx).Where("cycle_id = ?", cycleID)
	if period > 0 {
		q = q.Where("period_number = ?", period)
	}
	err := q.Order("period_number ASC, user_id ASC").Find(&out).Error
	return out, err
}

func (r *ContributionRepository) ListByCycleMember(ctx context.Context, cycleMemberID string) ([]contribution.Contribution, error) {
	var out []contribution.Contribution
	err := r.db.WithContext(ctx).
		Where("cycle_member_id = ?", cycleMemberID).
		Order("period_number ASC").
		Find(&out).Error
	return out, err
}

func (r *ContributionRepository) MembersWithPeriod(ctx context.Context, cycleID string, period int) (map[string]bool, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&contribution.Contribution{}).
		Where("cycle_id = ? AND period_number = ?", cycleID, period).
		Pluck("cycle_member_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *ContributionRepository) SavePayment(ctx context.Context, c *contribution.Contribution) error {
	return r.db.WithContext(ctx).Model(c).
		Select("amount_paid", "status", "paid_at", "notes", "updated_at").
		Updates(c).Error
}

func (r *ContributionRepository) SaveConfirmation(ctx context.Context, c *contribution.Contribution) error {
	return r.db.WithContext(ctx).Model(c).
		Select("status", "confirmed_at", "confirmed_by", "updated_at").
		Updates(c).Error
}

func (r *ContributionRepository) ListOverdue(ctx context.Context, f contribution.OverdueFilter) ([]contribution.Contribution, error) {
	var out []contribution.Contribution
	q := r.db.WithContext(ctx).
		Select("contributions.*").
		Joins("JOIN cycles ON cycles.id = contributions.cycle_id").
		Where("cycles.status = ?", cycle.StatusActive).
		Where("contributions.status IN ?", []contribution.Status{contribution.StatusPending, contribution.StatusPartial}).
		Where("contributions.due_date < ?", f.Cutoff)
	if f.ChamaID != "" {
		q = q.Where("cycles.chama_id = ?", f.ChamaID)
	}
	if f.AfterID != "" {
		q = q.Where("(contributions.due_date > ? OR (contributions.due_date = ? AND contributions.id > ?))",
			f.AfterDue, f.AfterDue, f.AfterID)
	}
	q = q.Order("contributions.due_date ASC, contributions.id ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	err := q.Find(&out).Error
	return out, err
}

package gormrepo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"merry/internal/domain/apperr"
	"merry/internal/domain/cycle"
)

type CycleRepository struct{ db *gorm.DB }

func NewCycleRepository(db *gorm.DB) *CycleRepository { return &CycleRepository{db: db} }

func (r *CycleRepository) Create(ctx context.Context, c *cycle.Cycle) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CycleRepository) GetByID(ctx context.Context, id string) (*cycle.Cycle, error) {
	var out cycle.Cycle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, notFound(err, "cycle", id)
	}
	return &out, nil
}

func (r *CycleRepository) GetByIDForUpdate(ctx context.Context, id string) (*cycle.Cycle, error) {
	var out cycle.Cycle
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, notFound(err, "cycle", id)
	}
	return &out, nil
}

func (r *CycleRepository) ListByChama(ctx context.Context, chamaID string) ([]cycle.Cycle, error) {
	var out []cycle.Cycle
	err := r.db.WithContext(ctx).
		Where("chama_id = ?", chamaID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *CycleRepository) Start(ctx context.Context, id string, endDate, startedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&cycle.Cycle{}).
		Where("id = ? AND status = ? AND current_period = 0", id, cycle.StatusPending).
		Updates(map[string]any{
			"status":         cycle.StatusActive,
			"current_period": 1,
			"end_date":       endDate,
			"started_at":     startedAt,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *CycleRepository) AdvancePeriod(ctx context.Context, id string, from int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&cycle.Cycle{}).
		Where("id = ? AND status = ? AND current_period = ? AND current_period < total_periods", id, cycle.StatusActive, from).
		Update("current_period", from+1)
	return res.RowsAffected == 1, res.Error
}

func (r *CycleRepository) Complete(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&cycle.Cycle{}).
		Where("id = ? AND status = ?", id, cycle.StatusActive).
		Updates(map[string]any{"status": cycle.StatusCompleted, "completed_at": at})
	return res.RowsAffected == 1, res.Error
}

func (r *CycleRepository) Transition(ctx context.Context, id string, from []cycle.Status, to cycle.Status) (bool, error) {
	res := r.db.WithContext(ctx).Model(&cycle.Cycle{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return res.RowsAffected == 1, res.Error
}

func (r *CycleRepository) CreateMembers(ctx context.Context, ms []cycle.Member) error {
	if len(ms) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&ms).Error
}

func (r *CycleRepository) GetMember(ctx context.Context, id string) (*cycle.Member, error) {
	var out cycle.Member
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, notFound(err, "cycle member", id)
	}
	return &out, nil
}

func (r *CycleRepository) ListMembers(ctx context.Context, cycleID string) ([]cycle.Member, error) {
	var out []cycle.Member
	err := r.db.WithContext(ctx).
		Where("cycle_id = ?", cycleID).
		Order("turn_order ASC").
		Find(&out).Error
	return out, err
}

func (r *CycleRepository) ReassignTurnOrder(ctx context.Context, cycleID string, order map[string]int) error {
	db := r.db.WithContext(ctx)
	// park every seat on a negative turn so the unique index never sees a
	// duplicate while rows are rewritten one by one
	if err := db.Model(&cycle.Member{}).
		Where("cycle_id = ?", cycleID).
		Update("turn_order", gorm.Expr("0 - turn_order")).Error; err != nil {
		return err
	}
	for memberID, turn := range order {
		res := db.Model(&cycle.Member{}).
			Where("id = ? AND cycle_id = ?", memberID, cycleID).
			Updates(map[string]any{"turn_order": turn, "assigned_number": turn})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("cycle member", memberID)
		}
	}
	return nil
}

func (r *CycleRepository) UpdateMemberSettings(ctx context.Context, id string, s cycle.MemberSettings) error {
	upd := map[string]any{}
	switch {
	case s.ClearCustomSavings:
		upd["custom_savings_amount"] = nil
	case s.CustomSavingsAmount != nil:
		upd["custom_savings_amount"] = *s.CustomSavingsAmount
	}
	if s.HideSavings != nil {
		upd["hide_savings"] = *s.HideSavings
	}
	if len(upd) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&cycle.Member{}).Where("id = ?", id).Updates(upd)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("cycle member", id)
	}
	return nil
}

func (r *CycleRepository) UpdateMemberStatus(ctx context.Context, id string, to cycle.MemberStatus) error {
	res := r.db.WithContext(ctx).Model(&cycle.Member{}).Where("id = ?", id).Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("cycle member", id)
	}
	return nil
}

func (r *CycleRepository) CompleteMembers(ctx context.Context, cycleID string) error {
	return r.db.WithContext(ctx).Model(&cycle.Member{}).
		Where("cycle_id = ? AND status = ?", cycleID, cycle.MemberActive).
		Update("status", cycle.MemberCompleted).Error
}

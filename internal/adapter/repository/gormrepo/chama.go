package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"merry/internal/domain/apperr"
	"merry/internal/domain/chama"
)

type ChamaRepository struct{ db *gorm.DB }

func NewChamaRepository(db *gorm.DB) *ChamaRepository { return &ChamaRepository{db: db} }

func (r *ChamaRepository) Create(ctx context.Context, c *chama.Chama) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ChamaRepository) GetByID(ctx context.Context, id string) (*chama.Chama, error) {
	var out chama.Chama
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, notFound(err, "chama", id)
	}
	return &out, nil
}

func (r *ChamaRepository) AddMember(ctx context.Context, m *chama.Member) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *ChamaRepository) GetMember(ctx context.Context, id string) (*chama.Member, error) {
	var out chama.Member
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, notFound(err, "chama member", id)
	}
	return &out, nil
}

func (r *ChamaRepository) UpdateMemberStatus(ctx context.Context, id string, to chama.MemberStatus) error {
	res := r.db.WithContext(ctx).Model(&chama.Member{}).Where("id = ?", id).Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("chama member", id)
	}
	return nil
}

func (r *ChamaRepository) GetMemberByUser(ctx context.Context, chamaID, userID string) (*chama.Member, error) {
	var out chama.Member
	err := r.db.WithContext(ctx).
		Where("chama_id = ? AND user_id = ?", chamaID, userID).
		First(&out).Error
	if err != nil {
		return nil, notFound(err, "chama member for user", userID)
	}
	return &out, nil
}

func (r *ChamaRepository) ListMembers(ctx context.Context, chamaID string) ([]chama.Member, error) {
	var out []chama.Member
	err := r.db.WithContext(ctx).
		Where("chama_id = ?", chamaID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *ChamaRepository) ListMembersByIDs(ctx context.Context, ids []string) ([]chama.Member, error) {
	var out []chama.Member
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *ChamaRepository) ListMembersByUsers(ctx context.Context, chamaID string, userIDs []string) ([]chama.Member, error) {
	var out []chama.Member
	if len(userIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).
		Where("chama_id = ? AND user_id IN ?", chamaID, userIDs).
		Find(&out).Error
	return out, err
}

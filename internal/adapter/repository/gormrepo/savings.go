package gormrepo

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"merry/internal/domain/savings"
	"merry/pkg/id"
)

type SavingsRepository struct{ db *gorm.DB }

func NewSavingsRepository(db *gorm.DB) *SavingsRepository { return &SavingsRepository{db: db} }

func (r *SavingsRepository) lock(ctx context.Context, userID, chamaID string) (*savings.Account, error) {
	var out savings.Account
	err := forUpdate(r.db.WithContext(ctx)).
		Where("user_id = ? AND chama_id = ?", userID, chamaID).
		First(&out).Error
	return &out, err
}

func (r *SavingsRepository) GetOrCreateForUpdate(ctx context.Context, userID, chamaID string) (*savings.Account, error) {
	acct, err := r.lock(ctx, userID, chamaID)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	fresh := savings.Account{ID: id.NewID32(), UserID: userID, ChamaID: chamaID, Balance: decimal.Zero}
	// a concurrent first deposit may win the insert; the unique index keeps one row
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
		return nil, err
	}
	acct, err = r.lock(ctx, userID, chamaID)
	if err != nil {
		return nil, notFound(err, "savings account for user", userID)
	}
	return acct, nil
}

func (r *SavingsRepository) GetByUser(ctx context.Context, userID, chamaID string) (*savings.Account, error) {
	var out savings.Account
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND chama_id = ?", userID, chamaID).
		First(&out).Error
	if err != nil {
		return nil, notFound(err, "savings account for user", userID)
	}
	return &out, nil
}

func (r *SavingsRepository) SaveBalance(ctx context.Context, a *savings.Account) error {
	return r.db.WithContext(ctx).Model(a).
		Select("balance", "updated_at").
		Updates(a).Error
}

func (r *SavingsRepository) CreateTransaction(ctx context.Context, t *savings.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// ListTransactions returns the newest limit rows; limit <= 0 returns all.
func (r *SavingsRepository) ListTransactions(ctx context.Context, accountID string, limit int) ([]savings.Transaction, error) {
	var out []savings.Transaction
	q := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

func (r *SavingsRepository) SumTransactions(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	row := r.db.WithContext(ctx).Model(&savings.Transaction{}).
		Where("account_id = ?", accountID).
		Select("SUM(amount)").
		Row()
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

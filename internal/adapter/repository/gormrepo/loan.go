package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"merry/internal/domain/loan"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loan.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByID(ctx context.Context, id string) (*loan.Loan, error) {
	var out loan.Loan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, notFound(err, "loan", id)
	}
	return &out, nil
}

func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id string) (*loan.Loan, error) {
	var out loan.Loan
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, notFound(err, "loan", id)
	}
	return &out, nil
}

// ListByChama lists a chama's loans, newest first. An empty status lists all.
func (r *LoanRepository) ListByChama(ctx context.Context, chamaID string, status loan.Status) ([]loan.Loan, error) {
	var out []loan.Loan
	q := r.db.WithContext(ctx).Where("chama_id = ?", chamaID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *LoanRepository) HasOpenLoan(ctx context.Context, chamaID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&loan.Loan{}).
		Where("chama_id = ? AND user_id = ?", chamaID, userID).
		Where("status IN ?", []loan.Status{loan.StatusPending, loan.StatusApproved, loan.StatusActive}).
		Count(&n).Error
	return n > 0, err
}

func (r *LoanRepository) CreateGuarantors(ctx context.Context, gs []loan.Guarantor) error {
	if len(gs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&gs).Error
}

func (r *LoanRepository) ListGuarantors(ctx context.Context, loanID string) ([]loan.Guarantor, error) {
	var out []loan.Guarantor
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *LoanRepository) GetGuarantorForUpdate(ctx context.Context, loanID, userID string) (*loan.Guarantor, error) {
	var out loan.Guarantor
	err := forUpdate(r.db.WithContext(ctx)).
		Where("loan_id = ? AND guarantor_user_id = ?", loanID, userID).
		First(&out).Error
	if err != nil {
		return nil, notFound(err, "guarantee for user", userID)
	}
	return &out, nil
}

func (r *LoanRepository) SaveGuarantor(ctx context.Context, g *loan.Guarantor) error {
	return r.db.WithContext(ctx).Model(g).
		Select("status", "responded_at", "updated_at").
		Updates(g).Error
}

func (r *LoanRepository) CancelPendingGuarantors(ctx context.Context, loanID string) error {
	return r.db.WithContext(ctx).Model(&loan.Guarantor{}).
		Where("loan_id = ? AND status = ?", loanID, loan.GuarantorPending).
		Update("status", loan.GuarantorCancelled).Error
}

func (r *LoanRepository) CreatePayment(ctx context.Context, p *loan.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *LoanRepository) ListPayments(ctx context.Context, loanID string) ([]loan.Payment, error) {
	var out []loan.Payment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("paid_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

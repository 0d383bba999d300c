package loanmock

import (
	"context"

	domain "merry/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writers default to no-ops; readers default to context.Canceled.
type Repo struct {
	CreateFn                  func(ctx context.Context, l *domain.Loan) error
	GetByIDFn                 func(ctx context.Context, id string) (*domain.Loan, error)
	GetByIDForUpdateFn        func(ctx context.Context, id string) (*domain.Loan, error)
	ListByChamaFn             func(ctx context.Context, chamaID string, status domain.Status) ([]domain.Loan, error)
	HasOpenLoanFn             func(ctx context.Context, chamaID, userID string) (bool, error)
	SaveFn                    func(ctx context.Context, l *domain.Loan) error
	CreateGuarantorsFn        func(ctx context.Context, gs []domain.Guarantor) error
	ListGuarantorsFn          func(ctx context.Context, loanID string) ([]domain.Guarantor, error)
	GetGuarantorForUpdateFn   func(ctx context.Context, loanID, userID string) (*domain.Guarantor, error)
	SaveGuarantorFn           func(ctx context.Context, g *domain.Guarantor) error
	CancelPendingGuarantorsFn func(ctx context.Context, loanID string) error
	CreatePaymentFn           func(ctx context.Context, p *domain.Payment) error
	ListPaymentsFn            func(ctx context.Context, loanID string) ([]domain.Payment, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Loan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByChama(ctx context.Context, chamaID string, status domain.Status) ([]domain.Loan, error) {
	if m.ListByChamaFn != nil {
		return m.ListByChamaFn(ctx, chamaID, status)
	}
	return nil, context.Canceled
}

func (m *Repo) HasOpenLoan(ctx context.Context, chamaID, userID string) (bool, error) {
	if m.HasOpenLoanFn != nil {
		return m.HasOpenLoanFn(ctx, chamaID, userID)
	}
	return false, context.Canceled
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) CreateGuarantors(ctx context.Context, gs []domain.Guarantor) error {
	if m.CreateGuarantorsFn != nil {
		return m.CreateGuarantorsFn(ctx, gs)
	}
	return nil
}

func (m *Repo) ListGuarantors(ctx context.Context, loanID string) ([]domain.Guarantor, error) {
	if m.ListGuarantorsFn != nil {
		return m.ListGuarantorsFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetGuarantorForUpdate(ctx context.Context, loanID, userID string) (*domain.Guarantor, error) {
	if m.GetGuarantorForUpdateFn != nil {
		return m.GetGuarantorForUpdateFn(ctx, loanID, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) SaveGuarantor(ctx context.Context, g *domain.Guarantor) error {
	if m.SaveGuarantorFn != nil {
		return m.SaveGuarantorFn(ctx, g)
	}
	return nil
}

func (m *Repo) CancelPendingGuarantors(ctx context.Context, loanID string) error {
	if m.CancelPendingGuarantorsFn != nil {
		return m.CancelPendingGuarantorsFn(ctx, loanID)
	}
	return nil
}

func (m *Repo) CreatePayment(ctx context.Context, p *domain.Payment) error {
	if m.CreatePaymentFn != nil {
		return m.CreatePaymentFn(ctx, p)
	}
	return nil
}

func (m *Repo) ListPayments(ctx context.Context, loanID string) ([]domain.Payment, error) {
	if m.ListPaymentsFn != nil {
		return m.ListPaymentsFn(ctx, loanID)
	}
	return nil, context.Canceled
}

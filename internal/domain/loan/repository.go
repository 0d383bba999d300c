package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id string) (*Loan, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Loan, error)
	ListByChama(ctx context.Context, chamaID string, status Status) ([]Loan, error)
	// HasOpenLoan reports whether userID has a pending, approved or active
	// loan in chamaID.
	HasOpenLoan(ctx context.Context, chamaID, userID string) (bool, error)
	Save(ctx context.Context, l *Loan) error

	CreateGuarantors(ctx context.Context, gs []Guarantor) error
	ListGuarantors(ctx context.Context, loanID string) ([]Guarantor, error)
	GetGuarantorForUpdate(ctx context.Context, loanID, userID string) (*Guarantor, error)
	SaveGuarantor(ctx context.Context, g *Guarantor) error
	// CancelPendingGuarantors flips the loan's pending guarantees to cancelled.
	CancelPendingGuarantors(ctx context.Context, loanID string) error

	CreatePayment(ctx context.Context, p *Payment) error
	ListPayments(ctx context.Context, loanID string) ([]Payment, error)
}

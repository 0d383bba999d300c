package loan

import (
	"context"
	"time"

	"merry/internal/domain/apperr"
	"merry/internal/domain/chama"
	"merry/internal/domain/event"
	"merry/internal/domain/loan"
	"merry/internal/domain/uow"
	"merry/pkg/id"
)

type Usecase struct {
	repos  uow.Repos
	uow    uow.UnitOfWork
	events event.Publisher
	policy loan.PenaltyPolicy
	now    func() time.Time
}

func NewUsecase(repos uow.Repos, u uow.UnitOfWork, events event.Publisher, policy loan.PenaltyPolicy) *Usecase {
	if events == nil {
		events = event.Discard{}
	}
	return &Usecase{
		repos:  repos,
		uow:    u,
		events: events,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) Request(ctx context.Context, in RequestInput) (*LoanDTO, error) {
	now := u.now()
	if err := validateRequest(in, now); err != nil {
		return nil, err
	}

	l := &loan.Loan{
		ID:      id.NewID32(),
		UserID:  in.BorrowerID,
		ChamaID: in.ChamaID,
		Amount:  in.Amount,
		Status:  loan.StatusPending,
		Purpose: in.Purpose,
		DueDate: in.DueDate.UTC(),
	}
	gs := make([]loan.Guarantor, len(in.GuarantorUserIDs))
	for i, uid := range in.GuarantorUserIDs {
		gs[i] = loan.Guarantor{ID: id.NewID32(), LoanID: l.ID, GuarantorUserID: uid, Status: loan.GuarantorPending}
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		open, err := r.Loans.HasOpenLoan(ctx, in.ChamaID, in.BorrowerID)
		if err != nil {
			return err
		}
		if open {
			return apperr.State("borrower %s already has an open loan", in.BorrowerID)
		}
		if _, err := r.Chamas.GetByID(ctx, in.ChamaID); err != nil {
			return err
		}
		users := append([]string{in.BorrowerID}, in.GuarantorUserIDs...)
		ms, err := r.Chamas.ListMembersByUsers(ctx, in.ChamaID, users)
		if err != nil {
			return err
		}
		active := make(map[string]bool, len(ms))
		for _, m := range ms {
			active[m.UserID] = m.Status == chama.MemberActive
		}
		for _, uid := range users {
			if !active[uid] {
				return apperr.Invalid("user %s is not an active member of the chama", uid)
			}
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		return r.Loans.CreateGuarantors(ctx, gs)
	})
	if err != nil {
		return nil, err
	}

	u.events.Publish(ctx,
		event.Event{Type: event.LoanRequested, ChamaID: l.ChamaID, UserIDs: []string{l.UserID}, Amount: l.Amount, RefID: l.ID, OccurredAt: now},
		event.Event{Type: event.GuaranteeRequested, ChamaID: l.ChamaID, UserIDs: in.GuarantorUserIDs, Amount: l.Amount, RefID: l.ID, OccurredAt: now},
	)
	return &LoanDTO{Loan: *l, Breakdown: l.Breakdown(now, u.policy), Guarantors: gs}, nil
}

func validateRequest(in RequestInput, now time.Time) error {
	if !id.Valid(in.BorrowerID) {
		return apperr.Invalid("borrower id must be 32 hex characters")
	}
	if !in.Amount.IsPositive() {
		return apperr.Invalid("amount must be positive")
	}
	if !in.DueDate.After(now) {
		return apperr.Invalid("due_date must be in the future")
	}
	if len(in.GuarantorUserIDs) == 0 {
		return apperr.Invalid("a loan needs at least one guarantor")
	}
	seen := map[string]bool{in.BorrowerID: true}
	for _, g := range in.GuarantorUserIDs {
		if g == in.BorrowerID {
			return apperr.Invalid("borrower cannot guarantee their own loan")
		}
		if seen[g] {
			return apperr.Invalid("guarantor %s listed twice", g)
		}
		seen[g] = true
	}
	return nil
}

// Get returns the loan with its breakdown as of now, guarantors and payments.
func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.repos.Loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	gs, err := u.repos.Loans.ListGuarantors(ctx, loanID)
	if err != nil {
		return nil, err
	}
	ps, err := u.repos.Loans.ListPayments(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return &LoanDTO{Loan: *l, Breakdown: l.Breakdown(u.now(), u.policy), Guarantors: gs, Payments: ps}, nil
}

// Breakdown computes the loan's amounts as of at; a zero at means now.
func (u *Usecase) Breakdown(ctx context.Context, loanID string, at time.Time) (*loan.Breakdown, error) {
	l, err := u.repos.Loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if at.IsZero() {
		at = u.now()
	}
	b := l.Breakdown(at, u.policy)
	return &b, nil
}

func (u *Usecase) ListByChama(ctx context.Context, chamaID string, status loan.Status) ([]LoanDTO, error) {
	if _, err := u.repos.Chamas.GetByID(ctx, chamaID); err != nil {
		return nil, err
	}
	ls, err := u.repos.Loans.ListByChama(ctx, chamaID, status)
	if err != nil {
		return nil, err
	}
	now := u.now()
	out := make([]LoanDTO, 0, len(ls))
	for _, l := range ls {
		out = append(out, LoanDTO{Loan: l, Breakdown: l.Breakdown(now, u.policy)})
	}
	return out, nil
}

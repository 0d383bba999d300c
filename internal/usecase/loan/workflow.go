package loan

import (
	"context"
	"fmt"
	"time"

	"merry/internal/domain/apperr"
	"merry/internal/domain/event"
	"merry/internal/domain/loan"
	"merry/internal/domain/savings"
	"merry/internal/domain/uow"
	"merry/pkg/id"
)

// RespondGuarantee records a guarantor's answer on a pending loan.
func (u *Usecase) RespondGuarantee(ctx context.Context, loanID, guarantorUserID string, approve bool) (*loan.Guarantor, error) {
	var out *loan.Guarantor
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusPending {
			return apperr.State("loan %s is %s, not pending", l.ID, l.Status)
		}
		g, err := r.Loans.GetGuarantorForUpdate(ctx, l.ID, guarantorUserID)
		if err != nil {
			return err
		}
		if err := g.Respond(approve, u.now()); err != nil {
			return err
		}
		if err := r.Loans.SaveGuarantor(ctx, g); err != nil {
			return err
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Approve passes the admin gate. Every guarantor must have approved first.
func (u *Usecase) Approve(ctx context.Context, in ApproveInput) (*LoanDTO, error) {
	var out LoanDTO
	now := u.now()
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusPending {
			return apperr.State("loan %s is %s, not pending", l.ID, l.Status)
		}
		gs, err := r.Loans.ListGuarantors(ctx, l.ID)
		if err != nil {
			return err
		}
		if !loan.AllApproved(gs) {
			return apperr.State("loan %s still needs approval from every guarantor", l.ID)
		}
		ch, err := r.Chamas.GetByID(ctx, l.ChamaID)
		if err != nil {
			return err
		}
		rate := ch.DefaultInterestRate
		if in.InterestRate != nil {
			rate = *in.InterestRate
		}
		if err := l.Approve(rate, in.AdminID, now); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = LoanDTO{Loan: *l, Breakdown: l.Breakdown(now, u.policy), Guarantors: gs}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.events.Publish(ctx, loanEvent(event.LoanApproved, &out.Loan, now))
	return &out, nil
}

// Disburse hands the principal to the borrower's savings wallet.
func (u *Usecase) Disburse(ctx context.Context, loanID string) (*LoanDTO, error) {
	var out LoanDTO
	now := u.now()
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if err := l.Disburse(now); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		_, _, err := savings.Post(ctx, r.Savings, savings.Entry{
			UserID:      l.UserID,
			ChamaID:     l.ChamaID,
			Amount:      l.Amount,
			Reason:      savings.ReasonLoanDisbursement,
			ReferenceID: l.ID,
			Description: "loan disbursement",
		})
		if err != nil {
			return err
		}
		out = LoanDTO{Loan: *l, Breakdown: l.Breakdown(now, u.policy)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.events.Publish(ctx, loanEvent(event.LoanDisbursed, &out.Loan, now))
	return &out, nil
}

// RecordPayment applies a repayment. Payments are capped at the total
// outstanding including penalty; the loan closes once principal and interest
// are covered.
func (u *Usecase) RecordPayment(ctx context.Context, in PaymentInput) (*PaymentResult, error) {
	if in.Source == "" {
		in.Source = loan.SourceCash
	}
	if in.Source != loan.SourceCash && in.Source != loan.SourceSavings {
		return nil, apperr.Invalid("unknown payment source %q", in.Source)
	}

	var out PaymentResult
	now := u.now()
	paidAt := now
	if in.PaidAt != nil {
		paidAt = in.PaidAt.UTC()
	}
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if !in.ActorAdmin && in.ActorID != l.UserID {
			return apperr.Forbidden("loan %s belongs to another member", l.ID)
		}
		due := l.Breakdown(now, u.policy).TotalOutstanding
		if err := l.ApplyPayment(in.Amount, due, paidAt); err != nil {
			return err
		}
		if in.Source == loan.SourceSavings {
			_, _, err := savings.Post(ctx, r.Savings, savings.Entry{
				UserID:      l.UserID,
				ChamaID:     l.ChamaID,
				Amount:      in.Amount.Neg(),
				Reason:      savings.ReasonLoanRepayment,
				ReferenceID: l.ID,
				Description: fmt.Sprintf("loan repayment %s", in.Amount.StringFixed(2)),
			})
			if err != nil {
				return err
			}
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		p := loan.Payment{
			ID:         id.NewID32(),
			LoanID:     l.ID,
			Amount:     in.Amount,
			Source:     in.Source,
			PaidAt:     paidAt,
			RecordedBy: in.ActorID,
		}
		if err := r.Loans.CreatePayment(ctx, &p); err != nil {
			return err
		}
		out = PaymentResult{Loan: LoanDTO{Loan: *l, Breakdown: l.Breakdown(now, u.policy)}, Payment: p}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Loan.Status == loan.StatusPaid {
		u.events.Publish(ctx, loanEvent(event.LoanRepaid, &out.Loan.Loan, now))
	}
	return &out, nil
}

// Cancel withdraws a loan that has not been disbursed. The borrower or an
// admin may cancel.
func (u *Usecase) Cancel(ctx context.Context, loanID, actorID string, actorAdmin bool) (*LoanDTO, error) {
	var out LoanDTO
	now := u.now()
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if !actorAdmin && actorID != l.UserID {
			return apperr.Forbidden("only the borrower or an admin can cancel loan %s", l.ID)
		}
		if err := l.Cancel(); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Loans.CancelPendingGuarantors(ctx, l.ID); err != nil {
			return err
		}
		out = LoanDTO{Loan: *l, Breakdown: l.Breakdown(now, u.policy)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.events.Publish(ctx, loanEvent(event.LoanCancelled, &out.Loan, now))
	return &out, nil
}

func (u *Usecase) MarkDefaulted(ctx context.Context, loanID string) (*LoanDTO, error) {
	var out LoanDTO
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if err := l.MarkDefaulted(); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = LoanDTO{Loan: *l, Breakdown: l.Breakdown(u.now(), u.policy)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func loanEvent(typ event.Type, l *loan.Loan, at time.Time) event.Event {
	return event.Event{
		Type:       typ,
		ChamaID:    l.ChamaID,
		UserIDs:    []string{l.UserID},
		Amount:     l.Amount,
		RefID:      l.ID,
		OccurredAt: at,
	}
}

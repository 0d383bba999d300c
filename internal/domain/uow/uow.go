package uow

import (
	"context"

	"merry/internal/domain/chama"
	"merry/internal/domain/contribution"
	"merry/internal/domain/cycle"
	"merry/internal/domain/loan"
	"merry/internal/domain/notification"
	"merry/internal/domain/payout"
	"merry/internal/domain/savings"
)

// Repos bundles repositories bound to one handle: the pool or a transaction.
type Repos struct {
	Chamas        chama.Repository
	Cycles        cycle.Repository
	Contributions contribution.Repository
	Payouts       payout.Repository
	Loans         loan.Repository
	Savings       savings.Repository
	Notifications notification.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the cycle row first, then pass it in
	WithinCycleTx(ctx context.Context, cycleID string, fn func(r Repos, c *cycle.Cycle) error) error
	// lock the loan row first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}

package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"merry/internal/domain/cycle"
	"merry/internal/domain/loan"
	"merry/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

// NewRepos binds every repository to db, which may be a transaction.
func NewRepos(db *gorm.DB) uow.Repos {
	return uow.Repos{
		Chamas:        &ChamaRepository{db: db},
		Cycles:        &CycleRepository{db: db},
		Contributions: &ContributionRepository{db: db},
		Payouts:       &PayoutRepository{db: db},
		Loans:         &LoanRepository{db: db},
		Savings:       &SavingsRepository{db: db},
		Notifications: &NotificationRepository{db: db},
	}
}

// Repos returns repositories on the pool, for reads outside a transaction.
func (u *GormUoW) Repos() uow.Repos { return NewRepos(u.db) }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepos(tx))
	})
}

func (u *GormUoW) WithinCycleTx(ctx context.Context, cycleID string, fn func(r uow.Repos, c *cycle.Cycle) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := NewRepos(tx)
		// lock the cycle row up-front to prevent races
		c, err := r.Cycles.GetByIDForUpdate(ctx, cycleID)
		if err != nil {
			return err
		}
		return fn(r, c)
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := NewRepos(tx)
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}

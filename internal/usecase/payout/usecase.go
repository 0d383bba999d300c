package payout

import (
	"context"
	"time"

	domain "merry/internal/domain/payout"
	"merry/internal/domain/event"
	"merry/internal/domain/uow"
)

type Usecase struct {
	repos  uow.Repos
	uow    uow.UnitOfWork
	events event.Publisher
	now    func() time.Time
}

func NewUsecase(repos uow.Repos, u uow.UnitOfWork, events event.Publisher) *Usecase {
	if events == nil {
		events = event.Discard{}
	}
	return &Usecase{repos: repos, uow: u, events: events, now: func() time.Time { return time.Now().UTC() }}
}

// MarkPaid records that the pot was handed over.
func (u *Usecase) MarkPaid(ctx context.Context, payoutID string) (*domain.Payout, error) {
	return u.apply(ctx, payoutID, event.PayoutPaid, func(p *domain.Payout, now time.Time) error {
		return p.MarkPaid(now)
	})
}

// Confirm closes a payout, with or without a prior MarkPaid.
func (u *Usecase) Confirm(ctx context.Context, payoutID, adminID string) (*domain.Payout, error) {
	return u.apply(ctx, payoutID, event.PayoutConfirmed, func(p *domain.Payout, now time.Time) error {
		return p.Confirm(adminID, now)
	})
}

func (u *Usecase) apply(ctx context.Context, payoutID string, typ event.Type, step func(*domain.Payout, time.Time) error) (*domain.Payout, error) {
	var (
		out *domain.Payout
		evt event.Event
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, err := r.Payouts.GetByIDForUpdate(ctx, payoutID)
		if err != nil {
			return err
		}
		now := u.now()
		if err := step(p, now); err != nil {
			return err
		}
		if err := r.Payouts.SaveStatus(ctx, p); err != nil {
			return err
		}
		cy, err := r.Cycles.GetByID(ctx, p.CycleID)
		if err != nil {
			return err
		}
		out = p
		evt = event.Event{
			Type:       typ,
			ChamaID:    cy.ChamaID,
			CycleID:    p.CycleID,
			Period:     p.PeriodNumber,
			UserIDs:    []string{p.UserID},
			Amount:     p.Amount,
			RefID:      p.ID,
			OccurredAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.events.Publish(ctx, evt)
	return out, nil
}

func (u *Usecase) Get(ctx context.Context, payoutID string) (*domain.Payout, error) {
	return u.repos.Payouts.GetByID(ctx, payoutID)
}

func (u *Usecase) ListByCycle(ctx context.Context, cycleID string) ([]domain.Payout, error) {
	if _, err := u.repos.Cycles.GetByID(ctx, cycleID); err != nil {
		return nil, err
	}
	return u.repos.Payouts.ListByCycle(ctx, cycleID)
}

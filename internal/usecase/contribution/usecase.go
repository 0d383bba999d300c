package contribution

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"merry/internal/domain/apperr"
	"merry/internal/domain/calendar"
	domain "merry/internal/domain/contribution"
	"merry/internal/domain/event"
	"merry/internal/domain/savings"
	"merry/internal/domain/uow"
)

type Usecase struct {
	repos  uow.Repos
	uow    uow.UnitOfWork
	events event.Publisher
	policy domain.Policy
	now    func() time.Time
}

func NewUsecase(repos uow.Repos, u uow.UnitOfWork, events event.Publisher, policy domain.Policy) *Usecase {
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

type RecordPaymentInput struct {
	ContributionID string
	// AmountPaid is the cumulative amount paid, not an increment.
	AmountPaid decimal.Decimal
	PaidAt     *time.Time
	Notes      string
	ActorID    string
	ActorAdmin bool
}

type ConfirmResult struct {
	Contribution domain.View          `json:"contribution"`
	Savings      *savings.Transaction `json:"savings_transaction,omitempty"`
}

func (u *Usecase) RecordPayment(ctx context.Context, in RecordPaymentInput) (*domain.View, error) {
	var (
		out domain.View
		evt event.Event
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Contributions.GetByIDForUpdate(ctx, in.ContributionID)
		if err != nil {
			return err
		}
		if !in.ActorAdmin && in.ActorID != c.UserID {
			return apperr.Forbidden("contribution %s belongs to another member", c.ID)
		}
		now := u.now()
		paidAt := now
		if in.PaidAt != nil {
			paidAt = in.PaidAt.UTC()
		}
		if err := c.ApplyPayment(in.AmountPaid, paidAt, in.Notes); err != nil {
			return err
		}
		if err := r.Contributions.SavePayment(ctx, c); err != nil {
			return err
		}
		cy, err := r.Cycles.GetByID(ctx, c.CycleID)
		if err != nil {
			return err
		}
		out = domain.NewView(*c, now, u.policy)
		evt = event.Event{
			Type:       event.ContributionPaid,
			ChamaID:    cy.ChamaID,
			CycleID:    c.CycleID,
			Period:     c.PeriodNumber,
			UserIDs:    []string{c.UserID},
			Amount:     c.AmountPaid,
			RefID:      c.ID,
			OccurredAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.events.Publish(ctx, evt)
	return &out, nil
}

// Confirm settles a paid or partial contribution and, for chamas that save,
// credits the member's savings in the same transaction.
func (u *Usecase) Confirm(ctx context.Context, contributionID, adminID string) (*ConfirmResult, error) {
	var (
		out ConfirmResult
		evt event.Event
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Contributions.GetByIDForUpdate(ctx, contributionID)
		if err != nil {
			return err
		}
		cy, err := r.Cycles.GetByID(ctx, c.CycleID)
		if err != nil {
			return err
		}
		ch, err := r.Chamas.GetByID(ctx, cy.ChamaID)
		if err != nil {
			return err
		}
		m, err := r.Cycles.GetMember(ctx, c.CycleMemberID)
		if err != nil {
			return err
		}

		now := u.now()
		if err := c.Confirm(adminID, now); err != nil {
			return err
		}
		if err := r.Contributions.SaveConfirmation(ctx, c); err != nil {
			return err
		}

		if amt := m.SavingsAmount(*cy); ch.Type.CreditsSavings() && amt.IsPositive() {
			_, txn, err := savings.Post(ctx, r.Savings, savings.Entry{
				UserID:      c.UserID,
				ChamaID:     cy.ChamaID,
				Amount:      amt,
				Reason:      savings.ReasonContribution,
				ReferenceID: c.ID,
				Description: fmt.Sprintf("%s period %d", cy.Name, c.PeriodNumber),
			})
			if err != nil {
				return err
			}
			out.Savings = txn
		}

		out.Contribution = domain.NewView(*c, now, u.policy)
		evt = event.Event{
			Type:       event.ContributionConfirmed,
			ChamaID:    cy.ChamaID,
			CycleID:    cy.ID,
			Period:     c.PeriodNumber,
			UserIDs:    []string{c.UserID},
			Amount:     c.AmountPaid,
			RefID:      c.ID,
			OccurredAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.events.Publish(ctx, evt)
	return &out, nil
}

func (u *Usecase) Get(ctx context.Context, contributionID string) (*domain.View, error) {
	c, err := u.repos.Contributions.GetByID(ctx, contributionID)
	if err != nil {
		return nil, err
	}
	v := domain.NewView(*c, u.now(), u.policy)
	return &v, nil
}

// ListByCycle lists a cycle's contributions; period 0 lists every period.
func (u *Usecase) ListByCycle(ctx context.Context, cycleID string, period int) ([]domain.View, error) {
	if _, err := u.repos.Cycles.GetByID(ctx, cycleID); err != nil {
		return nil, err
	}
	cs, err := u.repos.Contributions.ListByCycle(ctx, cycleID, period)
	if err != nil {
		return nil, err
	}
	now := u.now()
	out := make([]domain.View, 0, len(cs))
	for _, c := range cs {
		out = append(out, domain.NewView(c, now, u.policy))
	}
	return out, nil
}

// OverdueQuery selects one page of overdue contributions. ChamaID narrows
// the page to one chama; After continues from the last row of the previous
// page.
type OverdueQuery struct {
	ChamaID string
	After   *domain.View
	Limit   int
}

// Overdue lists unsettled contributions of active cycles whose due day has
// ended, oldest first.
func (u *Usecase) Overdue(ctx context.Context, q OverdueQuery) ([]domain.View, error) {
	now := u.now()
	f := domain.OverdueFilter{Cutoff: calendar.OverdueCutoff(now), ChamaID: q.ChamaID, Limit: q.Limit}
	if q.After != nil {
		f.AfterDue, f.AfterID = q.After.DueDate, q.After.ID
	}
	cs, err := u.repos.Contributions.ListOverdue(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]domain.View, 0, len(cs))
	for _, c := range cs {
		out = append(out, domain.NewView(c, now, u.policy))
	}
	return out, nil
}

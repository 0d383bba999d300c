package cycle

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"merry/internal/domain/apperr"
	"merry/internal/domain/chama"
	"merry/internal/domain/contribution"
	domain "merry/internal/domain/cycle"
	"merry/internal/domain/event"
	"merry/internal/domain/payout"
	"merry/internal/domain/uow"
	"merry/pkg/id"
)

// Start moves a pending cycle to period 1 and generates that period's
// contributions and payout.
func (u *Usecase) Start(ctx context.Context, cycleID string) (*StartResult, error) {
	var (
		res    StartResult
		events []event.Event
	)
	err := u.uow.WithinCycleTx(ctx, cycleID, func(r uow.Repos, c *domain.Cycle) error {
		if c.Status != domain.StatusPending {
			return apperr.State("cycle %s is %s, not pending", c.ID, c.Status)
		}
		ch, err := r.Chamas.GetByID(ctx, c.ChamaID)
		if err != nil {
			return err
		}
		members, err := r.Cycles.ListMembers(ctx, c.ID)
		if err != nil {
			return err
		}
		active := domain.Active(members)
		if len(active) == 0 {
			return apperr.State("cycle %s has no active members", c.ID)
		}

		now := u.now()
		if c.EndDate == nil {
			end, err := c.ComputeEndDate()
			if err != nil {
				return err
			}
			c.EndDate = &end
		}
		ok, err := r.Cycles.Start(ctx, c.ID, *c.EndDate, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.State("cycle %s was started concurrently", c.ID)
		}
		c.Status = domain.StatusActive
		c.CurrentPeriod = 1
		c.StartedAt = &now

		gen, err := u.generatePeriod(ctx, r, ch, c, active, 1)
		if err != nil {
			return err
		}
		res = StartResult{Cycle: *c, ContributionsCreated: len(gen.contributions), Payout: gen.payout}
		events = append(events, event.Event{
			Type:       event.CycleStarted,
			ChamaID:    c.ChamaID,
			CycleID:    c.ID,
			Period:     1,
			OccurredAt: now,
		})
		events = append(events, gen.events(c, now)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.events.Publish(ctx, events...)
	return &res, nil
}

// Advance closes the current period. From the last period it completes the
// cycle instead.
func (u *Usecase) Advance(ctx context.Context, in AdvanceInput) (*AdvanceResult, error) {
	if in.ExpectedPeriod < 1 {
		return nil, apperr.Invalid("expected_period is required")
	}
	var (
		res    AdvanceResult
		events []event.Event
	)
	err := u.uow.WithinCycleTx(ctx, in.CycleID, func(r uow.Repos, c *domain.Cycle) error {
		if c.Status != domain.StatusActive {
			return apperr.State("cycle %s is %s, not active", c.ID, c.Status)
		}
		if in.ExpectedPeriod != c.CurrentPeriod {
			return apperr.State("cycle %s is at period %d, not %d", c.ID, c.CurrentPeriod, in.ExpectedPeriod)
		}
		now := u.now()

		if c.CurrentPeriod >= c.TotalPeriods {
			ok, err := r.Cycles.Complete(ctx, c.ID, now)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.State("cycle %s changed concurrently", c.ID)
			}
			if err := r.Cycles.CompleteMembers(ctx, c.ID); err != nil {
				return err
			}
			c.Status = domain.StatusCompleted
			c.CompletedAt = &now
			res = AdvanceResult{Cycle: *c, Period: c.CurrentPeriod, Completed: true}
			events = append(events, event.Event{
				Type:       event.CycleEnded,
				ChamaID:    c.ChamaID,
				CycleID:    c.ID,
				Period:     c.CurrentPeriod,
				OccurredAt: now,
			})
			return nil
		}

		ch, err := r.Chamas.GetByID(ctx, c.ChamaID)
		if err != nil {
			return err
		}
		members, err := r.Cycles.ListMembers(ctx, c.ID)
		if err != nil {
			return err
		}
		next := c.CurrentPeriod + 1
		gen, err := u.generatePeriod(ctx, r, ch, c, domain.Active(members), next)
		if err != nil {
			return err
		}
		ok, err := r.Cycles.AdvancePeriod(ctx, c.ID, c.CurrentPeriod)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.State("cycle %s moved past period %d concurrently", c.ID, c.CurrentPeriod)
		}
		c.CurrentPeriod = next

		res = AdvanceResult{
			Cycle:                *c,
			Period:               next,
			ContributionsCreated: len(gen.contributions),
			Payout:               gen.payout,
		}
		events = append(events, event.Event{
			Type:       event.CyclePeriodAdvanced,
			ChamaID:    c.ChamaID,
			CycleID:    c.ID,
			Period:     next,
			OccurredAt: now,
		})
		events = append(events, gen.events(c, now)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.events.Publish(ctx, events...)
	return &res, nil
}

func (u *Usecase) Pause(ctx context.Context, cycleID string) (*domain.Cycle, error) {
	return u.transition(ctx, cycleID, []domain.Status{domain.StatusActive}, domain.StatusPaused, event.CyclePaused)
}

func (u *Usecase) Resume(ctx context.Context, cycleID string) (*domain.Cycle, error) {
	return u.transition(ctx, cycleID, []domain.Status{domain.StatusPaused}, domain.StatusActive, event.CycleResumed)
}

func (u *Usecase) Cancel(ctx context.Context, cycleID string) (*domain.Cycle, error) {
	from := []domain.Status{domain.StatusPending, domain.StatusActive, domain.StatusPaused}
	return u.transition(ctx, cycleID, from, domain.StatusCancelled, event.CycleCancelled)
}

func (u *Usecase) transition(ctx context.Context, cycleID string, from []domain.Status, to domain.Status, typ event.Type) (*domain.Cycle, error) {
	var (
		out *domain.Cycle
		evt event.Event
	)
	err := u.uow.WithinCycleTx(ctx, cycleID, func(r uow.Repos, c *domain.Cycle) error {
		if !slices.Contains(from, c.Status) {
			return apperr.State("cycle %s is %s and cannot become %s", c.ID, c.Status, to)
		}
		ok, err := r.Cycles.Transition(ctx, c.ID, from, to)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.State("cycle %s changed concurrently", c.ID)
		}
		c.Status = to
		out = c
		evt = event.Event{Type: typ, ChamaID: c.ChamaID, CycleID: c.ID, Period: c.CurrentPeriod, OccurredAt: u.now()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.events.Publish(ctx, evt)
	return out, nil
}

type periodBatch struct {
	period        int
	contributions []contribution.Contribution
	payout        *payout.Payout
}

// generatePeriod inserts whatever is missing for period: one contribution
// per active member and, for rotating chamas, the period's payout.
func (u *Usecase) generatePeriod(ctx context.Context, r uow.Repos, ch *chama.Chama, c *domain.Cycle, active []domain.Member, period int) (periodBatch, error) {
	out := periodBatch{period: period}
	due, err := c.DueDate(period)
	if err != nil {
		return out, err
	}

	existing, err := r.Contributions.MembersWithPeriod(ctx, c.ID, period)
	if err != nil {
		return out, err
	}
	for _, m := range active {
		if existing[m.ID] {
			continue
		}
		out.contributions = append(out.contributions, contribution.Contribution{
			ID:            id.NewID32(),
			CycleID:       c.ID,
			CycleMemberID: m.ID,
			UserID:        m.UserID,
			PeriodNumber:  period,
			AmountDue:     c.ContributionAmount,
			DueDate:       due,
			Status:        contribution.StatusPending,
		})
	}
	if err := r.Contributions.CreateBatch(ctx, out.contributions); err != nil {
		return out, err
	}

	if !ch.Type.RotatesPayouts() {
		return out, nil
	}
	exists, err := r.Payouts.ExistsForPeriod(ctx, c.ID, period)
	if err != nil || exists {
		return out, err
	}
	recipient := domain.RecipientFor(active, period)
	if recipient == nil {
		slog.WarnContext(ctx, "no active member holds this turn; payout skipped",
			"cycle_id", c.ID, "period", period)
		return out, nil
	}
	p := &payout.Payout{
		ID:            id.NewID32(),
		CycleID:       c.ID,
		CycleMemberID: recipient.ID,
		UserID:        recipient.UserID,
		PeriodNumber:  period,
		Amount:        c.PayoutFor(len(active)),
		Status:        payout.StatusScheduled,
		ScheduledDate: due,
	}
	if err := r.Payouts.Create(ctx, p); err != nil {
		return out, err
	}
	out.payout = p
	return out, nil
}

func (b periodBatch) events(c *domain.Cycle, now time.Time) []event.Event {
	var out []event.Event
	if b.payout != nil {
		out = append(out, event.Event{
			Type:       event.PayoutScheduled,
			ChamaID:    c.ChamaID,
			CycleID:    c.ID,
			Period:     b.period,
			UserIDs:    []string{b.payout.UserID},
			Amount:     b.payout.Amount,
			RefID:      b.payout.ID,
			OccurredAt: now,
		})
	}
	if len(b.contributions) > 0 {
		dues := make([]event.Due, 0, len(b.contributions))
		users := make([]string, 0, len(b.contributions))
		for _, k := range b.contributions {
			dues = append(dues, event.Due{
				ContributionID: k.ID,
				UserID:         k.UserID,
				Amount:         k.AmountDue,
				DueDate:        k.DueDate,
			})
			users = append(users, k.UserID)
		}
		out = append(out, event.Event{
			Type:       event.ContributionsDue,
			ChamaID:    c.ChamaID,
			CycleID:    c.ID,
			Period:     b.period,
			UserIDs:    users,
			Amount:     c.ContributionAmount,
			Dues:       dues,
			OccurredAt: now,
		})
	}
	return out
}

package cycle

import (
	"context"

	"github.com/shopspring/decimal"

	"merry/internal/domain/apperr"
	"merry/internal/domain/contribution"
	domain "merry/internal/domain/cycle"
	"merry/internal/domain/payout"
)

func (u *Usecase) Summary(ctx context.Context, cycleID string) (*Summary, error) {
	c, err := u.repos.Cycles.GetByID(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	members, err := u.repos.Cycles.ListMembers(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	payouts, err := u.repos.Payouts.ListByCycle(ctx, cycleID)
	if err != nil {
		return nil, err
	}

	now := u.now()
	s := &Summary{
		Cycle:               *c,
		MemberCount:         len(members),
		ActiveMembers:       len(domain.Active(members)),
		ExpectedThisPeriod:  decimal.Zero,
		CollectedThisPeriod: decimal.Zero,
		StatusCounts:        map[contribution.Status]int{},
	}
	if c.CurrentPeriod > 0 {
		due, err := c.DueDate(c.CurrentPeriod)
		if err != nil {
			return nil, err
		}
		s.CurrentDueDate = &due

		cs, err := u.repos.Contributions.ListByCycle(ctx, cycleID, c.CurrentPeriod)
		if err != nil {
			return nil, err
		}
		for _, k := range cs {
			s.ExpectedThisPeriod = s.ExpectedThisPeriod.Add(k.AmountDue)
			s.CollectedThisPeriod = s.CollectedThisPeriod.Add(k.AmountPaid)
			s.StatusCounts[contribution.EffectiveStatus(k, now, u.policy)]++
		}
	}

	settled := map[int]bool{}
	for _, p := range payouts {
		if p.Status == payout.StatusPaid || p.Status == payout.StatusConfirmed {
			s.PayoutsMade++
			settled[p.PeriodNumber] = true
		}
	}
	if !c.Status.Terminal() {
		from := max(c.CurrentPeriod, 1)
		for i := range members {
			m := members[i]
			if m.Status == domain.MemberActive && m.TurnOrder >= from && !settled[m.TurnOrder] {
				s.NextRecipient = &m
				break
			}
		}
	}
	return s, nil
}

func (u *Usecase) MemberStatus(ctx context.Context, cycleID, cycleMemberID string) (*MemberStatus, error) {
	m, err := u.repos.Cycles.GetMember(ctx, cycleMemberID)
	if err != nil {
		return nil, err
	}
	if m.CycleID != cycleID {
		return nil, apperr.NotFound("cycle member", cycleMemberID)
	}
	cs, err := u.repos.Contributions.ListByCycleMember(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	payouts, err := u.repos.Payouts.ListByCycle(ctx, cycleID)
	if err != nil {
		return nil, err
	}

	now := u.now()
	out := &MemberStatus{
		Member:        *m,
		Contributions: make([]contribution.View, 0, len(cs)),
		TotalDue:      decimal.Zero,
		TotalPaid:     decimal.Zero,
		Arrears:       decimal.Zero,
	}
	for _, k := range cs {
		v := contribution.NewView(k, now, u.policy)
		out.Contributions = append(out.Contributions, v)
		out.TotalDue = out.TotalDue.Add(k.AmountDue)
		out.TotalPaid = out.TotalPaid.Add(k.AmountPaid)
		switch v.EffectiveStatus {
		case contribution.StatusLate:
			out.LatePeriods++
			out.Arrears = out.Arrears.Add(k.Outstanding())
		case contribution.StatusMissed:
			out.MissedPeriods++
			out.Arrears = out.Arrears.Add(k.Outstanding())
		}
	}
	for i := range payouts {
		if payouts[i].CycleMemberID == m.ID {
			out.Payout = &payouts[i]
			break
		}
	}
	return out, nil
}

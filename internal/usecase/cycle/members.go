package cycle

import (
	"context"

	"merry/internal/domain/apperr"
	domain "merry/internal/domain/cycle"
	"merry/internal/domain/uow"
)

// ShuffleTurnOrder draws a fresh random turn order for a pending cycle.
func (u *Usecase) ShuffleTurnOrder(ctx context.Context, cycleID string) ([]domain.Member, error) {
	return u.reorder(ctx, cycleID, func(members []domain.Member) (map[string]int, error) {
		perm := u.perm(len(members))
		order := make(map[string]int, len(members))
		for i, idx := range perm {
			order[members[idx].ID] = i + 1
		}
		return order, nil
	})
}

// SetTurnOrder assigns turns in the order of cycleMemberIDs, which must name
// every member of the cycle exactly once.
func (u *Usecase) SetTurnOrder(ctx context.Context, cycleID string, cycleMemberIDs []string) ([]domain.Member, error) {
	return u.reorder(ctx, cycleID, func(members []domain.Member) (map[string]int, error) {
		if len(cycleMemberIDs) != len(members) {
			return nil, apperr.Invalid("turn order lists %d members, cycle has %d", len(cycleMemberIDs), len(members))
		}
		known := make(map[string]bool, len(members))
		for _, m := range members {
			known[m.ID] = true
		}
		order := make(map[string]int, len(members))
		for i, mid := range cycleMemberIDs {
			if !known[mid] {
				return nil, apperr.Invalid("member %s is not part of cycle %s", mid, cycleID)
			}
			if _, dup := order[mid]; dup {
				return nil, apperr.Invalid("member %s listed twice", mid)
			}
			order[mid] = i + 1
		}
		return order, nil
	})
}

func (u *Usecase) reorder(ctx context.Context, cycleID string, plan func([]domain.Member) (map[string]int, error)) ([]domain.Member, error) {
	var out []domain.Member
	err := u.uow.WithinCycleTx(ctx, cycleID, func(r uow.Repos, c *domain.Cycle) error {
		if c.Status != domain.StatusPending {
			return apperr.State("turn order is fixed once cycle %s leaves pending (now %s)", c.ID, c.Status)
		}
		members, err := r.Cycles.ListMembers(ctx, c.ID)
		if err != nil {
			return err
		}
		order, err := plan(members)
		if err != nil {
			return err
		}
		if err := r.Cycles.ReassignTurnOrder(ctx, c.ID, order); err != nil {
			return err
		}
		out, err = r.Cycles.ListMembers(ctx, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateMemberSettings changes a member's savings override or visibility
// while the cycle is still running.
func (u *Usecase) UpdateMemberSettings(ctx context.Context, cycleID, cycleMemberID string, s domain.MemberSettings) (*domain.Member, error) {
	if s.Empty() {
		return nil, apperr.Invalid("no settings to update")
	}
	if s.CustomSavingsAmount != nil && s.CustomSavingsAmount.IsNegative() {
		return nil, apperr.Invalid("custom_savings_amount must not be negative")
	}
	return u.updateMember(ctx, cycleID, cycleMemberID, func(r uow.Repos, m *domain.Member) error {
		return r.Cycles.UpdateMemberSettings(ctx, m.ID, s)
	})
}

// UpdateMemberStatus takes an active member out of the rotation.
func (u *Usecase) UpdateMemberStatus(ctx context.Context, cycleID, cycleMemberID string, to domain.MemberStatus) (*domain.Member, error) {
	if to != domain.MemberDefaulted && to != domain.MemberRemoved {
		return nil, apperr.Invalid("member status can only change to %s or %s", domain.MemberDefaulted, domain.MemberRemoved)
	}
	return u.updateMember(ctx, cycleID, cycleMemberID, func(r uow.Repos, m *domain.Member) error {
		if m.Status != domain.MemberActive {
			return apperr.State("member %s is already %s", m.ID, m.Status)
		}
		return r.Cycles.UpdateMemberStatus(ctx, m.ID, to)
	})
}

func (u *Usecase) updateMember(ctx context.Context, cycleID, cycleMemberID string, apply func(r uow.Repos, m *domain.Member) error) (*domain.Member, error) {
	var out *domain.Member
	err := u.uow.WithinCycleTx(ctx, cycleID, func(r uow.Repos, c *domain.Cycle) error {
		if c.Status.Terminal() {
			return apperr.State("cycle %s is %s", c.ID, c.Status)
		}
		m, err := r.Cycles.GetMember(ctx, cycleMemberID)
		if err != nil {
			return err
		}
		if m.CycleID != c.ID {
			return apperr.NotFound("cycle member", cycleMemberID)
		}
		if err := apply(r, m); err != nil {
			return err
		}
		out, err = r.Cycles.GetMember(ctx, m.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

package cycle

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"merry/internal/domain/apperr"
	"merry/internal/domain/chama"
	"merry/internal/domain/contribution"
	domain "merry/internal/domain/cycle"
	"merry/internal/domain/event"
	"merry/internal/domain/uow"
	"merry/pkg/id"
)

type Usecase struct {
	repos  uow.Repos
	uow    uow.UnitOfWork
	events event.Publisher
	policy contribution.Policy

	now  func() time.Time
	perm func(n int) []int
}

// NewUsecase wires the cycle state machine. repos serve reads outside a
// transaction; every transition goes through u.
func NewUsecase(repos uow.Repos, u uow.UnitOfWork, events event.Publisher, policy contribution.Policy) *Usecase {
	if events == nil {
		events = event.Discard{}
	}
	return &Usecase{
		repos:  repos,
		uow:    u,
		events: events,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
		perm:   rand.Perm,
	}
}

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*CycleDTO, error) {
	if err := validateCreate(&in); err != nil {
		return nil, err
	}

	var out *CycleDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Chamas.GetByID(ctx, in.ChamaID); err != nil {
			return err
		}
		found, err := r.Chamas.ListMembersByIDs(ctx, in.ChamaMemberIDs)
		if err != nil {
			return err
		}
		byID := make(map[string]chama.Member, len(found))
		for _, m := range found {
			byID[m.ID] = m
		}
		for _, mid := range in.ChamaMemberIDs {
			m, ok := byID[mid]
			if !ok || m.ChamaID != in.ChamaID {
				return apperr.Invalid("chama member %s does not belong to chama %s", mid, in.ChamaID)
			}
			if m.Status != chama.MemberActive {
				return apperr.Invalid("chama member %s is %s", mid, m.Status)
			}
		}

		c := &domain.Cycle{
			ID:                 id.NewID32(),
			ChamaID:            in.ChamaID,
			Name:               in.Name,
			ContributionAmount: in.ContributionAmount,
			PayoutAmount:       in.PayoutAmount,
			SavingsAmount:      in.SavingsAmount,
			ServiceFee:         in.ServiceFee,
			Frequency:          in.Frequency,
			TotalPeriods:       in.TotalPeriods,
			StartDate:          in.StartDate,
			Status:             domain.StatusPending,
			CreatedBy:          in.CreatedBy,
		}
		end, err := c.ComputeEndDate()
		if err != nil {
			return err
		}
		c.EndDate = &end
		if err := r.Cycles.Create(ctx, c); err != nil {
			return err
		}

		order := make([]int, len(in.ChamaMemberIDs))
		for i := range order {
			order[i] = i
		}
		if in.Shuffle {
			order = u.perm(len(in.ChamaMemberIDs))
		}
		members := make([]domain.Member, len(in.ChamaMemberIDs))
		for turn, idx := range order {
			cm := byID[in.ChamaMemberIDs[idx]]
			members[turn] = domain.Member{
				ID:             id.NewID32(),
				CycleID:        c.ID,
				ChamaMemberID:  cm.ID,
				UserID:         cm.UserID,
				TurnOrder:      turn + 1,
				AssignedNumber: turn + 1,
				Status:         domain.MemberActive,
			}
		}
		if err := r.Cycles.CreateMembers(ctx, members); err != nil {
			return err
		}
		out = &CycleDTO{Cycle: *c, Members: members}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func validateCreate(in *CreateInput) error {
	if in.Name == "" {
		return apperr.Invalid("name is required")
	}
	for _, f := range []struct {
		name string
		v    decimal.Decimal
	}{
		{"contribution_amount", in.ContributionAmount},
		{"payout_amount", in.PayoutAmount},
		{"savings_amount", in.SavingsAmount},
		{"service_fee", in.ServiceFee},
	} {
		if f.v.IsNegative() {
			return apperr.Invalid("%s must not be negative", f.name)
		}
	}
	if !in.Frequency.Valid() {
		return apperr.Invalid("unknown frequency %q", in.Frequency)
	}
	if in.StartDate.IsZero() {
		return apperr.Invalid("start_date is required")
	}
	if len(in.ChamaMemberIDs) == 0 {
		return apperr.Invalid("a cycle needs at least one member")
	}
	seen := make(map[string]bool, len(in.ChamaMemberIDs))
	for _, mid := range in.ChamaMemberIDs {
		if seen[mid] {
			return apperr.Invalid("chama member %s listed twice", mid)
		}
		seen[mid] = true
	}
	switch {
	case in.TotalPeriods == 0:
		in.TotalPeriods = len(in.ChamaMemberIDs)
	case in.TotalPeriods < 0:
		return apperr.Invalid("total_periods must be at least 1")
	case in.TotalPeriods > domain.MaxPeriods:
		return apperr.Invalid("total_periods must be at most %d", domain.MaxPeriods)
	}
	return nil
}

func (u *Usecase) Get(ctx context.Context, cycleID string) (*CycleDTO, error) {
	c, err := u.repos.Cycles.GetByID(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	members, err := u.repos.Cycles.ListMembers(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	return &CycleDTO{Cycle: *c, Members: members}, nil
}

func (u *Usecase) ListByChama(ctx context.Context, chamaID string) ([]domain.Cycle, error) {
	return u.repos.Cycles.ListByChama(ctx, chamaID)
}

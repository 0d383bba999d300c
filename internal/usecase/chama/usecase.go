package chama

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"merry/internal/domain/apperr"
	domain "merry/internal/domain/chama"
	"merry/internal/domain/uow"
	"merry/pkg/id"
)

type Usecase struct {
	repos uow.Repos
	uow   uow.UnitOfWork
}

func NewUsecase(repos uow.Repos, u uow.UnitOfWork) *Usecase {
	return &Usecase{repos: repos, uow: u}
}

type CreateInput struct {
	Name                string
	Type                domain.Type
	DefaultInterestRate decimal.Decimal
	CreatorUserID       string
	CreatorName         string
	CreatorPhone        string
}

type MemberInput struct {
	ChamaID     string
	UserID      string
	DisplayName string
	Phone       string
	Role        domain.Role
}

type ChamaDTO struct {
	domain.Chama
	Members []domain.Member `json:"members"`
}

// Create registers a chama with its creator as the first admin.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (*ChamaDTO, error) {
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "":
		return nil, apperr.Invalid("name is required")
	case !in.Type.Valid():
		return nil, apperr.Invalid("unknown chama type %q", in.Type)
	case in.DefaultInterestRate.IsNegative():
		return nil, apperr.Invalid("default_interest_rate must not be negative")
	case !id.Valid(in.CreatorUserID):
		return nil, apperr.Invalid("creator user id must be 32 hex characters")
	}

	c := &domain.Chama{
		ID:                  id.NewID32(),
		Name:                in.Name,
		Type:                in.Type,
		DefaultInterestRate: in.DefaultInterestRate,
		CreatedBy:           in.CreatorUserID,
	}
	admin := domain.Member{
		ID:          id.NewID32(),
		ChamaID:     c.ID,
		UserID:      in.CreatorUserID,
		DisplayName: in.CreatorName,
		Phone:       in.CreatorPhone,
		Role:        domain.RoleAdmin,
		Status:      domain.MemberActive,
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Chamas.Create(ctx, c); err != nil {
			return err
		}
		return r.Chamas.AddMember(ctx, &admin)
	})
	if err != nil {
		return nil, err
	}
	return &ChamaDTO{Chama: *c, Members: []domain.Member{admin}}, nil
}

func (u *Usecase) AddMember(ctx context.Context, in MemberInput) (*domain.Member, error) {
	if !id.Valid(in.UserID) {
		return nil, apperr.Invalid("user id must be 32 hex characters")
	}
	if in.Role == "" {
		in.Role = domain.RoleMember
	}
	if in.Role != domain.RoleMember && in.Role != domain.RoleAdmin {
		return nil, apperr.Invalid("unknown role %q", in.Role)
	}

	m := &domain.Member{
		ID:          id.NewID32(),
		ChamaID:     in.ChamaID,
		UserID:      in.UserID,
		DisplayName: strings.TrimSpace(in.DisplayName),
		Phone:       strings.TrimSpace(in.Phone),
		Role:        in.Role,
		Status:      domain.MemberActive,
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Chamas.GetByID(ctx, in.ChamaID); err != nil {
			return err
		}
		_, err := r.Chamas.GetMemberByUser(ctx, in.ChamaID, in.UserID)
		switch {
		case err == nil:
			return apperr.State("user %s is already a member", in.UserID)
		case !errors.Is(err, apperr.ErrNotFound):
			return err
		}
		return r.Chamas.AddMember(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// SetMemberStatus activates or deactivates a membership. Inactive members
// cannot join new cycles or guarantee loans.
func (u *Usecase) SetMemberStatus(ctx context.Context, chamaID, memberID string, to domain.MemberStatus) (*domain.Member, error) {
	if to != domain.MemberActive && to != domain.MemberInactive {
		return nil, apperr.Invalid("unknown member status %q", to)
	}
	var out *domain.Member
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		m, err := r.Chamas.GetMember(ctx, memberID)
		if err != nil {
			return err
		}
		if m.ChamaID != chamaID {
			return apperr.NotFound("chama member", memberID)
		}
		if err := r.Chamas.UpdateMemberStatus(ctx, m.ID, to); err != nil {
			return err
		}
		m.Status = to
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Usecase) Get(ctx context.Context, chamaID string) (*ChamaDTO, error) {
	c, err := u.repos.Chamas.GetByID(ctx, chamaID)
	if err != nil {
		return nil, err
	}
	ms, err := u.repos.Chamas.ListMembers(ctx, chamaID)
	if err != nil {
		return nil, err
	}
	return &ChamaDTO{Chama: *c, Members: ms}, nil
}

// Membership returns userID's membership, used for per-chama authorization.
func (u *Usecase) Membership(ctx context.Context, chamaID, userID string) (*domain.Member, error) {
	return u.repos.Chamas.GetMemberByUser(ctx, chamaID, userID)
}

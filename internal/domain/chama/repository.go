package chama

import "context"

type Repository interface {
	Create(ctx context.Context, c *Chama) error
	GetByID(ctx context.Context, id string) (*Chama, error)

	AddMember(ctx context.Context, m *Member) error
	GetMember(ctx context.Context, id string) (*Member, error)
	UpdateMemberStatus(ctx context.Context, id string, to MemberStatus) error
	// GetMemberByUser returns the membership of userID in chamaID.
	GetMemberByUser(ctx context.Context, chamaID, userID string) (*Member, error)
	ListMembers(ctx context.Context, chamaID string) ([]Member, error)
	ListMembersByIDs(ctx context.Context, ids []string) ([]Member, error)
	ListMembersByUsers(ctx context.Context, chamaID string, userIDs []string) ([]Member, error)
}

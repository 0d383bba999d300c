package cycle

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, c *Cycle) error
	GetByID(ctx context.Context, id string) (*Cycle, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Cycle, error)
	ListByChama(ctx context.Context, chamaID string) ([]Cycle, error)

	// Conditional transitions. Each reports false when the row was no longer
	// in the expected state, which callers treat as a lost race.
	Start(ctx context.Context, id string, endDate, startedAt time.Time) (bool, error)
	AdvancePeriod(ctx context.Context, id string, from int) (bool, error)
	Complete(ctx context.Context, id string, at time.Time) (bool, error)
	Transition(ctx context.Context, id string, from []Status, to Status) (bool, error)

	CreateMembers(ctx context.Context, ms []Member) error
	GetMember(ctx context.Context, id string) (*Member, error)
	ListMembers(ctx context.Context, cycleID string) ([]Member, error)
	// ReassignTurnOrder writes the memberID -> turn map without tripping the
	// (cycle_id, turn_order) unique index mid-way.
	ReassignTurnOrder(ctx context.Context, cycleID string, order map[string]int) error
	UpdateMemberSettings(ctx context.Context, id string, s MemberSettings) error
	UpdateMemberStatus(ctx context.Context, id string, to MemberStatus) error
	// CompleteMembers marks the cycle's active members completed.
	CompleteMembers(ctx context.Context, cycleID string) error
}

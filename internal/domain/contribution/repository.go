package contribution

import (
	"context"
	"time"
)

type Repository interface {
	CreateBatch(ctx context.Context, cs []Contribution) error
	GetByID(ctx context.Context, id string) (*Contribution, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Contribution, error)
	// ListByCycle lists a cycle's contributions; period 0 means every period.
	ListByCycle(ctx context.Context, cycleID string, period int) ([]Contribution, error)
	ListByCycleMember(ctx context.Context, cycleMemberID string) ([]Contribution, error)
	// MembersWithPeriod returns the cycle member ids that already have a
	// contribution for period.
	MembersWithPeriod(ctx context.Context, cycleID string, period int) (map[string]bool, error)
	SavePayment(ctx context.Context, c *Contribution) error
	SaveConfirmation(ctx context.Context, c *Contribution) error
	// ListOverdue returns unconfirmed contributions of active cycles due
	// before f.Cutoff, ordered by (due_date, id).
	ListOverdue(ctx context.Context, f OverdueFilter) ([]Contribution, error)
}

// OverdueFilter selects one page of overdue contributions. AfterDue and
// AfterID form a keyset: rows strictly after that (due_date, id) pair are
// returned. A zero AfterID starts from the oldest row.
type OverdueFilter struct {
	Cutoff   time.Time
	ChamaID  string
	AfterDue time.Time
	AfterID  string
	Limit    int
}

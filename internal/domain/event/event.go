// Package event describes what a committed state transition did. Use cases
// return events; the notify package fans them out after commit.
package event

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	CycleStarted          Type = "cycle_started"
	CyclePeriodAdvanced   Type = "cycle_period_advanced"
	CycleEnded            Type = "cycle_ended"
	CyclePaused           Type = "cycle_paused"
	CycleResumed          Type = "cycle_resumed"
	CycleCancelled        Type = "cycle_cancelled"
	ContributionsDue      Type = "contributions_due"
	ContributionPaid      Type = "contribution_paid"
	ContributionConfirmed Type = "contribution_confirmed"
	PayoutScheduled       Type = "payout_scheduled"
	PayoutPaid            Type = "payout_paid"
	PayoutConfirmed       Type = "payout_confirmed"
	LoanRequested         Type = "loan_requested"
	GuaranteeRequested    Type = "guarantee_requested"
	LoanApproved          Type = "loan_approved"
	LoanDisbursed         Type = "loan_disbursed"
	LoanRepaid            Type = "loan_repaid"
	LoanCancelled         Type = "loan_cancelled"
)

// Due is one contribution a reminder should go out for.
type Due struct {
	ContributionID string
	UserID         string
	Amount         decimal.Decimal
	DueDate        time.Time
	Late           bool
}

type Event struct {
	Type    Type
	ChamaID string
	CycleID string
	Period  int
	// UserIDs are the direct recipients. Empty with CycleID set means every
	// member of the cycle.
	UserIDs    []string
	Amount     decimal.Decimal
	RefID      string
	Dues       []Due
	OccurredAt time.Time
}

// Publisher receives events after the transaction that produced them commits.
// Implementations must not fail the caller.
type Publisher interface {
	Publish(ctx context.Context, events ...Event)
}

type Handler interface {
	Handle(ctx context.Context, e Event) error
}

type HandlerFunc func(ctx context.Context, e Event) error

func (f HandlerFunc) Handle(ctx context.Context, e Event) error { return f(ctx, e) }

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, ...Event) {}

package cycle

import (
	"time"

	"github.com/shopspring/decimal"

	"merry/internal/domain/contribution"
	domain "merry/internal/domain/cycle"
	"merry/internal/domain/payout"
)

type CreateInput struct {
	ChamaID            string
	Name               string
	ContributionAmount decimal.Decimal
	PayoutAmount       decimal.Decimal
	SavingsAmount      decimal.Decimal
	ServiceFee         decimal.Decimal
	Frequency          domain.Frequency
	TotalPeriods       int // 0 = one period per member
	StartDate          time.Time
	ChamaMemberIDs     []string
	Shuffle            bool
	CreatedBy          string
}

type AdvanceInput struct {
	CycleID string
	// ExpectedPeriod is the period the caller saw. A cycle that has already
	// moved past it fails without writing, so a double submit advances once.
	ExpectedPeriod int
}

type CycleDTO struct {
	domain.Cycle
	Members []domain.Member `json:"members,omitempty"`
}

type StartResult struct {
	Cycle                domain.Cycle   `json:"cycle"`
	ContributionsCreated int            `json:"contributions_created"`
	Payout               *payout.Payout `json:"payout,omitempty"`
}

type AdvanceResult struct {
	Cycle                domain.Cycle   `json:"cycle"`
	Period               int            `json:"period"`
	Completed            bool           `json:"completed"`
	ContributionsCreated int            `json:"contributions_created"`
	Payout               *payout.Payout `json:"payout,omitempty"`
}

type Summary struct {
	Cycle               domain.Cycle                `json:"cycle"`
	MemberCount         int                         `json:"member_count"`
	ActiveMembers       int                         `json:"active_members"`
	CurrentDueDate      *time.Time                  `json:"current_due_date,omitempty"`
	ExpectedThisPeriod  decimal.Decimal             `json:"expected_this_period"`
	CollectedThisPeriod decimal.Decimal             `json:"collected_this_period"`
	StatusCounts        map[contribution.Status]int `json:"status_counts"`
	PayoutsMade         int                         `json:"payouts_made"`
	NextRecipient       *domain.Member              `json:"next_recipient,omitempty"`
}

type MemberStatus struct {
	Member        domain.Member       `json:"member"`
	Contributions []contribution.View `json:"contributions"`
	TotalDue      decimal.Decimal     `json:"total_due"`
	TotalPaid     decimal.Decimal     `json:"total_paid"`
	Arrears       decimal.Decimal     `json:"arrears"`
	LatePeriods   int                 `json:"late_periods"`
	MissedPeriods int                 `json:"missed_periods"`
	Payout        *payout.Payout      `json:"payout,omitempty"`
}

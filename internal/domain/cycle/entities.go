package cycle

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal statuses accept no further transitions.
func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusCancelled }

type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

type Cycle struct {
	ID                 string          `gorm:"primaryKey;size:32" json:"id"`
	ChamaID            string          `gorm:"size:32;not null;index" json:"chama_id"`
	Name               string          `gorm:"size:255;not null" json:"name"`
	ContributionAmount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"contribution_amount"`
	PayoutAmount       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"payout_amount"`
	SavingsAmount      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"savings_amount"`
	ServiceFee         decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"service_fee"`
	Frequency          Frequency       `gorm:"size:20;not null" json:"frequency"`
	TotalPeriods       int             `gorm:"not null" json:"total_periods"`
	CurrentPeriod      int             `gorm:"not null;default:0" json:"current_period"`
	StartDate          time.Time       `gorm:"not null" json:"start_date"`
	EndDate            *time.Time      `json:"end_date"`
	Status             Status          `gorm:"size:20;not null;default:'pending';index" json:"status"`
	StartedAt          *time.Time      `json:"started_at"`
	CompletedAt        *time.Time      `json:"completed_at"`
	CreatedBy          string          `gorm:"size:32" json:"created_by"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Cycle) TableName() string { return "cycles" }

type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberDefaulted MemberStatus = "defaulted"
	MemberCompleted MemberStatus = "completed"
	MemberRemoved   MemberStatus = "removed"
)

// Member is a chama member's seat in one cycle.
type Member struct {
	ID                  string              `gorm:"primaryKey;size:32" json:"id"`
	CycleID             string              `gorm:"size:32;not null;uniqueIndex:ux_cycle_members_turn,priority:1;uniqueIndex:ux_cycle_members_seat,priority:1" json:"cycle_id"`
	ChamaMemberID       string              `gorm:"size:32;not null;uniqueIndex:ux_cycle_members_seat,priority:2" json:"chama_member_id"`
	UserID              string              `gorm:"size:32;not null;index" json:"user_id"`
	TurnOrder           int                 `gorm:"not null;uniqueIndex:ux_cycle_members_turn,priority:2" json:"turn_order"`
	AssignedNumber      int                 `gorm:"not null" json:"assigned_number"`
	Status              MemberStatus        `gorm:"size:20;not null;default:'active'" json:"status"`
	CustomSavingsAmount decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"custom_savings_amount"`
	HideSavings         bool                `gorm:"not null;default:false" json:"hide_savings"`
	CreatedAt           time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Member) TableName() string { return "cycle_members" }

// SavingsAmount is what a confirmed contribution moves into savings for m.
func (m Member) SavingsAmount(c Cycle) decimal.Decimal {
	if m.CustomSavingsAmount.Valid {
		return m.CustomSavingsAmount.Decimal
	}
	return c.SavingsAmount
}

// MemberSettings is the only column set a member settings update may write.
// Nil fields are left untouched.
type MemberSettings struct {
	CustomSavingsAmount *decimal.Decimal
	ClearCustomSavings  bool
	HideSavings         *bool
}

func (s MemberSettings) Empty() bool {
	return s.CustomSavingsAmount == nil && !s.ClearCustomSavings && s.HideSavings == nil
}

// Active filters members still taking part in the rotation.
func Active(ms []Member) []Member {
	out := make([]Member, 0, len(ms))
	for _, m := range ms {
		if m.Status == MemberActive {
			out = append(out, m)
		}
	}
	return out
}

// RecipientFor returns the active member whose turn is period, or nil.
func RecipientFor(ms []Member, period int) *Member {
	for i := range ms {
		if ms[i].TurnOrder == period && ms[i].Status == MemberActive {
			return &ms[i]
		}
	}
	return nil
}

// PayoutFor falls back to the full pot when no fixed payout is set.
func (c Cycle) PayoutFor(activeMembers int) decimal.Decimal {
	if c.PayoutAmount.IsPositive() {
		return c.PayoutAmount
	}
	return c.ContributionAmount.Mul(decimal.NewFromInt(int64(activeMembers)))
}

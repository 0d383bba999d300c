package contribution

import (
	"time"

	"github.com/shopspring/decimal"

	"merry/internal/domain/apperr"
	"merry/internal/domain/calendar"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPartial   Status = "partial"
	StatusPaid      Status = "paid"
	StatusConfirmed Status = "confirmed"
	// Derived on read, never persisted.
	StatusLate   Status = "late"
	StatusMissed Status = "missed"
)

type Contribution struct {
	ID            string          `gorm:"primaryKey;size:32" json:"id"`
	CycleID       string          `gorm:"size:32;not null;index:idx_contributions_cycle_period,priority:1" json:"cycle_id"`
	CycleMemberID string          `gorm:"size:32;not null;uniqueIndex:ux_contributions_member_period,priority:1" json:"cycle_member_id"`
	UserID        string          `gorm:"size:32;not null;index" json:"user_id"`
	PeriodNumber  int             `gorm:"not null;uniqueIndex:ux_contributions_member_period,priority:2;index:idx_contributions_cycle_period,priority:2" json:"period_number"`
	AmountDue     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount_due"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"amount_paid"`
	DueDate       time.Time       `gorm:"not null;index" json:"due_date"`
	Status        Status          `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaidAt        *time.Time      `json:"paid_at"`
	ConfirmedAt   *time.Time      `json:"confirmed_at"`
	ConfirmedBy   string          `gorm:"size:32" json:"confirmed_by"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Contribution) TableName() string { return "contributions" }

// ApplyPayment records the cumulative amount paid so far. amount is the new
// total, not an increment, so replays of the same call are harmless.
func (c *Contribution) ApplyPayment(amount decimal.Decimal, paidAt time.Time, notes string) error {
	if c.Status == StatusConfirmed {
		return apperr.State("contribution %s is already confirmed", c.ID)
	}
	if amount.IsNegative() {
		return apperr.Invalid("amount_paid must not be negative")
	}
	if amount.GreaterThan(c.AmountDue) {
		return apperr.Invalid("amount_paid %s exceeds amount_due %s", amount.StringFixed(2), c.AmountDue.StringFixed(2))
	}
	if amount.LessThan(c.AmountPaid) {
		return apperr.Invalid("amount_paid %s is below the %s already recorded", amount.StringFixed(2), c.AmountPaid.StringFixed(2))
	}
	c.AmountPaid = amount
	if amount.Equal(c.AmountDue) {
		c.Status = StatusPaid
	} else {
		c.Status = StatusPartial
	}
	if amount.IsPositive() {
		t := paidAt
		c.PaidAt = &t
	}
	if notes != "" {
		c.Notes = notes
	}
	return nil
}

func (c *Contribution) Confirm(by string, at time.Time) error {
	if c.Status != StatusPaid && c.Status != StatusPartial {
		return apperr.State("contribution %s is %s; only paid or partial contributions can be confirmed", c.ID, c.Status)
	}
	c.Status = StatusConfirmed
	c.ConfirmedAt = &at
	c.ConfirmedBy = by
	return nil
}

// Policy controls the derived late/missed statuses.
type Policy struct {
	// MissedAfter is how long past due an unpaid contribution turns missed.
	MissedAfter time.Duration
}

// EffectiveStatus is the status every read path reports. A contribution is
// late only once its due day has ended.
func EffectiveStatus(c Contribution, now time.Time, p Policy) Status {
	if c.Status != StatusPending && c.Status != StatusPartial {
		return c.Status
	}
	if !calendar.Overdue(c.DueDate, now) {
		return c.Status
	}
	if c.AmountPaid.IsZero() && calendar.Overdue(c.DueDate.Add(p.MissedAfter), now) {
		return StatusMissed
	}
	return StatusLate
}

// Outstanding is what is still owed on c.
func (c Contribution) Outstanding() decimal.Decimal {
	if c.Status == StatusConfirmed {
		return decimal.Zero
	}
	return c.AmountDue.Sub(c.AmountPaid)
}

// View is a contribution as read paths present it.
type View struct {
	Contribution
	EffectiveStatus Status `json:"effective_status"`
}

func NewView(c Contribution, now time.Time, p Policy) View {
	return View{Contribution: c, EffectiveStatus: EffectiveStatus(c, now, p)}
}

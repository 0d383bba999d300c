package payout

import (
	"time"

	"github.com/shopspring/decimal"

	"merry/internal/domain/apperr"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusPaid      Status = "paid"
	StatusConfirmed Status = "confirmed"
)

type Payout struct {
	ID            string          `gorm:"primaryKey;size:32" json:"id"`
	CycleID       string          `gorm:"size:32;not null;uniqueIndex:ux_payouts_cycle_period,priority:1" json:"cycle_id"`
	CycleMemberID string          `gorm:"size:32;not null;index" json:"cycle_member_id"`
	UserID        string          `gorm:"size:32;not null;index" json:"user_id"`
	PeriodNumber  int             `gorm:"not null;uniqueIndex:ux_payouts_cycle_period,priority:2" json:"period_number"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status        Status          `gorm:"size:20;not null;default:'scheduled'" json:"status"`
	ScheduledDate time.Time       `gorm:"not null" json:"scheduled_date"`
	PaidAt        *time.Time      `json:"paid_at"`
	ConfirmedAt   *time.Time      `json:"confirmed_at"`
	ConfirmedBy   string          `gorm:"size:32" json:"confirmed_by"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payout) TableName() string { return "payouts" }

func (p *Payout) MarkPaid(at time.Time) error {
	if p.Status != StatusScheduled {
		return apperr.State("payout %s is %s, not scheduled", p.ID, p.Status)
	}
	p.Status = StatusPaid
	p.PaidAt = &at
	return nil
}

func (p *Payout) Confirm(by string, at time.Time) error {
	if p.Status != StatusScheduled && p.Status != StatusPaid {
		return apperr.State("payout %s is already %s", p.ID, p.Status)
	}
	if p.PaidAt == nil {
		p.PaidAt = &at
	}
	p.Status = StatusConfirmed
	p.ConfirmedAt = &at
	p.ConfirmedBy = by
	return nil
}

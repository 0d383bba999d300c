package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"merry/internal/domain/calendar"
)

var hundred = decimal.NewFromInt(100)

// PenaltyPolicy: overdue balances accrue DailyRate percent per day overdue,
// capped at MaxRate percent. The due day itself is not overdue.
type PenaltyPolicy struct {
	DailyRate decimal.Decimal
	MaxRate   decimal.Decimal
}

func DefaultPenaltyPolicy() PenaltyPolicy {
	return PenaltyPolicy{DailyRate: decimal.NewFromInt(1), MaxRate: decimal.NewFromInt(30)}
}

type Breakdown struct {
	Principal        decimal.Decimal `json:"principal"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	Interest         decimal.Decimal `json:"interest"`
	OriginalTotal    decimal.Decimal `json:"original_total"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	Outstanding      decimal.Decimal `json:"outstanding"`
	IsOverdue        bool            `json:"is_overdue"`
	DaysOverdue      int             `json:"days_overdue"`
	PenaltyRate      decimal.Decimal `json:"penalty_rate"`
	PenaltyInterest  decimal.Decimal `json:"penalty_interest"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalWithPenalty decimal.Decimal `json:"total_with_penalty"`
	FullyPaid        bool            `json:"fully_paid"`
}

// ComputeBreakdown is a pure function of its inputs.
func ComputeBreakdown(principal, ratePct, paid decimal.Decimal, due, now time.Time, p PenaltyPolicy) Breakdown {
	interest := principal.Mul(ratePct).Div(hundred).Round(2)
	original := principal.Add(interest)
	b := Breakdown{
		Principal:        principal,
		InterestRate:     ratePct,
		Interest:         interest,
		OriginalTotal:    original,
		AmountPaid:       paid,
		Outstanding:      decimal.Zero,
		PenaltyRate:      decimal.Zero,
		PenaltyInterest:  decimal.Zero,
		TotalOutstanding: decimal.Zero,
		TotalWithPenalty: decimal.Zero,
	}
	if paid.GreaterThanOrEqual(original) {
		b.FullyPaid = true
		return b
	}
	b.Outstanding = original.Sub(paid)
	b.TotalOutstanding = b.Outstanding
	b.TotalWithPenalty = b.Outstanding

	if calendar.Overdue(due, now) {
		b.IsOverdue = true
		b.DaysOverdue = calendar.DaysOverdue(due, now)
		rate := p.DailyRate.Mul(decimal.NewFromInt(int64(b.DaysOverdue)))
		if rate.GreaterThan(p.MaxRate) {
			rate = p.MaxRate
		}
		b.PenaltyRate = rate
		b.PenaltyInterest = b.Outstanding.Mul(rate).Div(hundred).Round(2)
		b.TotalOutstanding = b.Outstanding.Add(b.PenaltyInterest)
		b.TotalWithPenalty = b.TotalOutstanding
	}
	return b
}

// Breakdown of l as of now.
func (l Loan) Breakdown(now time.Time, p PenaltyPolicy) Breakdown {
	return ComputeBreakdown(l.Amount, l.InterestRate, l.AmountPaid, l.DueDate, now, p)
}

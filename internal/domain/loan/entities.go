package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"merry/internal/domain/apperr"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusActive    Status = "active"
	StatusPaid      Status = "paid"
	StatusDefaulted Status = "defaulted"
	StatusCancelled Status = "cancelled"
)

type Loan struct {
	ID           string          `gorm:"primaryKey;size:32" json:"id"`
	UserID       string          `gorm:"size:32;not null;index:idx_loans_user_status,priority:1" json:"user_id"`
	ChamaID      string          `gorm:"size:32;not null;index" json:"chama_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status       Status          `gorm:"size:20;not null;default:'pending';index:idx_loans_user_status,priority:2" json:"status"`
	InterestRate decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"interest_rate"`
	Purpose      string          `gorm:"type:text" json:"purpose"`
	DueDate      time.Time       `gorm:"not null" json:"due_date"`
	AmountPaid   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"amount_paid"`
	ApprovedAt   *time.Time      `json:"approved_at"`
	ApprovedBy   string          `gorm:"size:32" json:"approved_by"`
	DisbursedAt  *time.Time      `json:"disbursed_at"`
	PaidAt       *time.Time      `json:"paid_at"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

func (l Loan) Interest() decimal.Decimal {
	return l.Amount.Mul(l.InterestRate).Div(hundred).Round(2)
}

func (l Loan) OriginalTotal() decimal.Decimal { return l.Amount.Add(l.Interest()) }

// Approve fixes the interest rate. Guarantor checks happen in the use case,
// which is the only place that sees the guarantor rows.
func (l *Loan) Approve(rate decimal.Decimal, by string, at time.Time) error {
	if l.Status != StatusPending {
		return apperr.State("loan %s is %s, not pending", l.ID, l.Status)
	}
	if rate.IsNegative() {
		return apperr.Invalid("interest_rate must not be negative")
	}
	l.Status = StatusApproved
	l.InterestRate = rate
	l.ApprovedAt = &at
	l.ApprovedBy = by
	return nil
}

func (l *Loan) Disburse(at time.Time) error {
	if l.Status != StatusApproved {
		return apperr.State("loan %s is %s, not approved", l.ID, l.Status)
	}
	l.Status = StatusActive
	l.DisbursedAt = &at
	return nil
}

// ApplyPayment adds amount to amount_paid. maxAllowed is the current total
// outstanding including penalty.
func (l *Loan) ApplyPayment(amount, maxAllowed decimal.Decimal, at time.Time) error {
	if l.Status != StatusActive {
		return apperr.State("loan %s is %s, not active", l.ID, l.Status)
	}
	if !amount.IsPositive() {
		return apperr.Invalid("payment amount must be positive")
	}
	if amount.GreaterThan(maxAllowed) {
		return apperr.Invalid("payment %s exceeds outstanding %s", amount.StringFixed(2), maxAllowed.StringFixed(2))
	}
	l.AmountPaid = l.AmountPaid.Add(amount)
	if l.AmountPaid.GreaterThanOrEqual(l.OriginalTotal()) {
		l.Status = StatusPaid
		l.PaidAt = &at
	}
	return nil
}

func (l *Loan) Cancel() error {
	if l.Status != StatusPending && l.Status != StatusApproved {
		return apperr.State("loan %s is %s and can no longer be cancelled", l.ID, l.Status)
	}
	l.Status = StatusCancelled
	return nil
}

func (l *Loan) MarkDefaulted() error {
	if l.Status != StatusActive {
		return apperr.State("loan %s is %s, not active", l.ID, l.Status)
	}
	l.Status = StatusDefaulted
	return nil
}

type GuarantorStatus string

const (
	GuarantorPending   GuarantorStatus = "pending"
	GuarantorApproved  GuarantorStatus = "approved"
	GuarantorRejected  GuarantorStatus = "rejected"
	GuarantorCancelled GuarantorStatus = "cancelled"
)

type Guarantor struct {
	ID              string          `gorm:"primaryKey;size:32" json:"id"`
	LoanID          string          `gorm:"size:32;not null;uniqueIndex:ux_loan_guarantors_loan_user,priority:1" json:"loan_id"`
	GuarantorUserID string          `gorm:"size:32;not null;uniqueIndex:ux_loan_guarantors_loan_user,priority:2;index" json:"guarantor_user_id"`
	Status          GuarantorStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	RespondedAt     *time.Time      `json:"responded_at"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Guarantor) TableName() string { return "loan_guarantors" }

func (g *Guarantor) Respond(approve bool, at time.Time) error {
	if g.Status != GuarantorPending {
		return apperr.State("guarantee %s was already %s", g.ID, g.Status)
	}
	g.Status = GuarantorRejected
	if approve {
		g.Status = GuarantorApproved
	}
	g.RespondedAt = &at
	return nil
}

// AllApproved reports whether every guarantor has approved. A loan with no
// guarantors never passes.
func AllApproved(gs []Guarantor) bool {
	if len(gs) == 0 {
		return false
	}
	for _, g := range gs {
		if g.Status != GuarantorApproved {
			return false
		}
	}
	return true
}

type PaymentSource string

const (
	SourceCash    PaymentSource = "cash"
	SourceSavings PaymentSource = "savings"
)

type Payment struct {
	ID         string          `gorm:"primaryKey;size:32" json:"id"`
	LoanID     string          `gorm:"size:32;not null;index" json:"loan_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Source     PaymentSource   `gorm:"size:20;not null" json:"source"`
	PaidAt     time.Time       `gorm:"not null" json:"paid_at"`
	RecordedBy string          `gorm:"size:32" json:"recorded_by"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Payment) TableName() string { return "loan_payments" }

package savings

import (
	"time"

	"github.com/shopspring/decimal"

	"merry/internal/domain/apperr"
	"merry/pkg/id"
)

type Reason string

const (
	ReasonContribution     Reason = "contribution"
	ReasonWithdrawal       Reason = "withdrawal"
	ReasonLoanDisbursement Reason = "loan_disbursement"
	ReasonLoanRepayment    Reason = "loan_repayment"
	ReasonAdjustment       Reason = "adjustment"
)

type Account struct {
	ID        string          `gorm:"primaryKey;size:32" json:"id"`
	UserID    string          `gorm:"size:32;not null;uniqueIndex:ux_savings_accounts_user_chama,priority:1" json:"user_id"`
	ChamaID   string          `gorm:"size:32;not null;uniqueIndex:ux_savings_accounts_user_chama,priority:2" json:"chama_id"`
	Balance   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string { return "savings_accounts" }

type Transaction struct {
	ID           string          `gorm:"primaryKey;size:32" json:"id"`
	AccountID    string          `gorm:"size:32;not null;index" json:"account_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"balance_after"`
	Reason       Reason          `gorm:"size:32;not null" json:"reason"`
	ReferenceID  string          `gorm:"size:32;index" json:"reference_id"`
	Description  string          `gorm:"size:255" json:"description"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string { return "savings_transactions" }

// Entry is one requested balance movement. Amount is signed: credits are
// positive, debits negative.
type Entry struct {
	UserID      string
	ChamaID     string
	Amount      decimal.Decimal
	Reason      Reason
	ReferenceID string
	Description string
}

// Apply moves the balance and returns the matching ledger row.
func (a *Account) Apply(e Entry) (Transaction, error) {
	if e.Amount.IsZero() {
		return Transaction{}, apperr.Invalid("savings entry amount must not be zero")
	}
	next := a.Balance.Add(e.Amount)
	if next.IsNegative() {
		return Transaction{}, apperr.Invalid("insufficient savings: balance %s, requested %s",
			a.Balance.StringFixed(2), e.Amount.Neg().StringFixed(2))
	}
	a.Balance = next
	return Transaction{
		ID:           id.NewID32(),
		AccountID:    a.ID,
		Amount:       e.Amount,
		BalanceAfter: next,
		Reason:       e.Reason,
		ReferenceID:  e.ReferenceID,
		Description:  e.Description,
	}, nil
}

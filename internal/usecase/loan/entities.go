package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"merry/internal/domain/loan"
)

type RequestInput struct {
	ChamaID          string
	BorrowerID       string
	Amount           decimal.Decimal
	DueDate          time.Time
	Purpose          string
	GuarantorUserIDs []string
}

type ApproveInput struct {
	LoanID  string
	AdminID string
	// InterestRate overrides the chama's default rate when set.
	InterestRate *decimal.Decimal
}

type PaymentInput struct {
	LoanID     string
	Amount     decimal.Decimal
	Source     loan.PaymentSource
	PaidAt     *time.Time
	ActorID    string
	ActorAdmin bool
}

type LoanDTO struct {
	loan.Loan
	Breakdown  loan.Breakdown   `json:"breakdown"`
	Guarantors []loan.Guarantor `json:"guarantors,omitempty"`
	Payments   []loan.Payment   `json:"payments,omitempty"`
}

type PaymentResult struct {
	Loan    LoanDTO      `json:"loan"`
	Payment loan.Payment `json:"payment"`
}

package savings

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"merry/internal/domain/apperr"
	"merry/internal/domain/chama"
	domain "merry/internal/domain/savings"
	"merry/internal/domain/uow"
)

const defaultHistory = 50

type Usecase struct {
	repos uow.Repos
	uow   uow.UnitOfWork
}

func NewUsecase(repos uow.Repos, u uow.UnitOfWork) *Usecase {
	return &Usecase{repos: repos, uow: u}
}

type Statement struct {
	UserID       string               `json:"user_id"`
	ChamaID      string               `json:"chama_id"`
	Balance      decimal.Decimal      `json:"balance"`
	Transactions []domain.Transaction `json:"transactions"`
}

type MovementInput struct {
	UserID  string
	ChamaID string
	Amount  decimal.Decimal
	Note    string
}

type Reconciliation struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	Ledger    decimal.Decimal `json:"ledger"`
	Balanced  bool            `json:"balanced"`
}

// Statement returns the balance and the newest transactions. A member who
// never saved gets a zero statement.
func (u *Usecase) Statement(ctx context.Context, userID, chamaID string, limit int) (*Statement, error) {
	if limit <= 0 {
		limit = defaultHistory
	}
	out := &Statement{UserID: userID, ChamaID: chamaID, Balance: decimal.Zero, Transactions: []domain.Transaction{}}
	acct, err := u.repos.Savings.GetByUser(ctx, userID, chamaID)
	if errors.Is(err, apperr.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	txns, err := u.repos.Savings.ListTransactions(ctx, acct.ID, limit)
	if err != nil {
		return nil, err
	}
	out.Balance = acct.Balance
	out.Transactions = txns
	return out, nil
}

// Withdraw debits the member's own savings.
func (u *Usecase) Withdraw(ctx context.Context, in MovementInput) (*domain.Transaction, error) {
	if !in.Amount.IsPositive() {
		return nil, apperr.Invalid("withdrawal amount must be positive")
	}
	return u.post(ctx, domain.Entry{
		UserID:      in.UserID,
		ChamaID:     in.ChamaID,
		Amount:      in.Amount.Neg(),
		Reason:      domain.ReasonWithdrawal,
		Description: in.Note,
	})
}

// Adjust posts an admin correction; Amount is signed.
func (u *Usecase) Adjust(ctx context.Context, in MovementInput) (*domain.Transaction, error) {
	if in.Note == "" {
		return nil, apperr.Invalid("an adjustment needs a note")
	}
	return u.post(ctx, domain.Entry{
		UserID:      in.UserID,
		ChamaID:     in.ChamaID,
		Amount:      in.Amount,
		Reason:      domain.ReasonAdjustment,
		Description: in.Note,
	})
}

func (u *Usecase) post(ctx context.Context, e domain.Entry) (*domain.Transaction, error) {
	var out *domain.Transaction
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		m, err := r.Chamas.GetMemberByUser(ctx, e.ChamaID, e.UserID)
		if err != nil {
			return err
		}
		if m.Status != chama.MemberActive {
			return apperr.State("member %s is %s", e.UserID, m.Status)
		}
		_, txn, err := domain.Post(ctx, r.Savings, e)
		if err != nil {
			return err
		}
		out = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reconcile compares the stored balance with the sum of its ledger.
func (u *Usecase) Reconcile(ctx context.Context, userID, chamaID string) (*Reconciliation, error) {
	acct, err := u.repos.Savings.GetByUser(ctx, userID, chamaID)
	if err != nil {
		return nil, err
	}
	sum, err := u.repos.Savings.SumTransactions(ctx, acct.ID)
	if err != nil {
		return nil, err
	}
	return &Reconciliation{
		AccountID: acct.ID,
		Balance:   acct.Balance,
		Ledger:    sum,
		Balanced:  acct.Balance.Equal(sum),
	}, nil
}

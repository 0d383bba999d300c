package savings

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	// GetOrCreateForUpdate locks the (user, chama) account, creating it at
	// zero balance on first use.
	GetOrCreateForUpdate(ctx context.Context, userID, chamaID string) (*Account, error)
	GetByUser(ctx context.Context, userID, chamaID string) (*Account, error)
	SaveBalance(ctx context.Context, a *Account) error
	CreateTransaction(ctx context.Context, t *Transaction) error
	ListTransactions(ctx context.Context, accountID string, limit int) ([]Transaction, error)
	SumTransactions(ctx context.Context, accountID string) (decimal.Decimal, error)
}

package savings

import "context"

// Post applies e to the owner's account through repo. Callers run it inside
// the transaction that caused the movement.
func Post(ctx context.Context, repo Repository, e Entry) (*Account, *Transaction, error) {
	acct, err := repo.GetOrCreateForUpdate(ctx, e.UserID, e.ChamaID)
	if err != nil {
		return nil, nil, err
	}
	txn, err := acct.Apply(e)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.SaveBalance(ctx, acct); err != nil {
		return nil, nil, err
	}
	if err := repo.CreateTransaction(ctx, &txn); err != nil {
		return nil, nil, err
	}
	return acct, &txn, nil
}

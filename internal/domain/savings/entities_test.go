package savings

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"merry/internal/domain/apperr"
)

func TestApply_RunningBalance(t *testing.T) {
	a := Account{ID: "acct"}
	sum := decimal.Zero
	for _, amt := range []string{"100", "250.50", "-50.50", "-300", "25"} {
		v := decimal.RequireFromString(amt)
		txn, err := a.Apply(Entry{Amount: v, Reason: ReasonAdjustment})
		if err != nil {
			t.Fatalf("Apply(%s): %v", amt, err)
		}
		sum = sum.Add(v)
		if !txn.BalanceAfter.Equal(sum) || !a.Balance.Equal(sum) {
			t.Fatalf("after %s: balance=%s balance_after=%s want %s", amt, a.Balance, txn.BalanceAfter, sum)
		}
		if txn.AccountID != "acct" || txn.ID == "" {
			t.Fatalf("txn not bound to account: %+v", txn)
		}
	}
}

func TestApply_Rejects(t *testing.T) {
	a := Account{Balance: decimal.NewFromInt(100)}
	if _, err := a.Apply(Entry{Amount: decimal.NewFromInt(-101)}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("overdraw: want ErrValidation, got %v", err)
	}
	if _, err := a.Apply(Entry{Amount: decimal.Zero}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("zero: want ErrValidation, got %v", err)
	}
	if !a.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance changed on rejected entry: %s", a.Balance)
	}
}

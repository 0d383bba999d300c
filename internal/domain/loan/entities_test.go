package loan

import (
	"errors"
	"testing"
	"time"

	"merry/internal/domain/apperr"
)

func TestLoanLifecycle(t *testing.T) {
	at := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	l := Loan{ID: "L1", Amount: d("10000"), Status: StatusPending, DueDate: at.Add(30 * 24 * time.Hour)}

	if err := l.Disburse(at); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("disburse pending: want ErrInvalidState, got %v", err)
	}
	if err := l.Approve(d("-1"), "admin", at); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("negative rate: want ErrValidation, got %v", err)
	}
	if err := l.Approve(d("10"), "admin", at); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := l.Approve(d("5"), "admin", at); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("re-approve must not change the rate, got %v", err)
	}
	if !l.InterestRate.Equal(d("10")) || !l.OriginalTotal().Equal(d("11000")) {
		t.Fatalf("rate=%s total=%s", l.InterestRate, l.OriginalTotal())
	}
	if err := l.Disburse(at); err != nil {
		t.Fatalf("disburse: %v", err)
	}

	limit := l.Breakdown(at, DefaultPenaltyPolicy()).TotalOutstanding
	if err := l.ApplyPayment(d("0"), limit, at); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("zero payment: want ErrValidation, got %v", err)
	}
	if err := l.ApplyPayment(d("11000.01"), limit, at); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("overpayment: want ErrValidation, got %v", err)
	}
	if err := l.ApplyPayment(d("6000"), limit, at); err != nil || l.Status != StatusActive {
		t.Fatalf("partial payment: %v status=%s", err, l.Status)
	}
	if err := l.ApplyPayment(d("5000"), limit, at); err != nil || l.Status != StatusPaid || l.PaidAt == nil {
		t.Fatalf("final payment: %v status=%s", err, l.Status)
	}
	if err := l.ApplyPayment(d("1"), limit, at); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("payment on paid loan: want ErrInvalidState, got %v", err)
	}
	if err := l.Cancel(); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("cancel paid loan: want ErrInvalidState, got %v", err)
	}
}

func TestLoanCancelAndDefault(t *testing.T) {
	for _, st := range []Status{StatusPending, StatusApproved} {
		l := Loan{Status: st}
		if err := l.Cancel(); err != nil || l.Status != StatusCancelled {
			t.Fatalf("cancel from %s: %v", st, err)
		}
	}
	l := Loan{Status: StatusActive}
	if err := l.MarkDefaulted(); err != nil || l.Status != StatusDefaulted {
		t.Fatalf("default: %v", err)
	}
	if err := (&Loan{Status: StatusPending}).MarkDefaulted(); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("default pending: want ErrInvalidState, got %v", err)
	}
}

func TestGuarantors(t *testing.T) {
	at := time.Now().UTC()
	g := Guarantor{ID: "g", Status: GuarantorPending}
	if err := g.Respond(true, at); err != nil || g.Status != GuarantorApproved {
		t.Fatalf("respond: %v %s", err, g.Status)
	}
	if err := g.Respond(false, at); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("second response: want ErrInvalidState, got %v", err)
	}

	if AllApproved(nil) {
		t.Fatal("no guarantors must not pass")
	}
	gs := []Guarantor{{Status: GuarantorApproved}, {Status: GuarantorPending}}
	if AllApproved(gs) {
		t.Fatal("pending guarantor must block")
	}
	gs[1].Status = GuarantorApproved
	if !AllApproved(gs) {
		t.Fatal("all approved should pass")
	}
}

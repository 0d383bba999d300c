package payout

import (
	"errors"
	"testing"
	"time"

	"merry/internal/domain/apperr"
)

func TestPayoutTransitions(t *testing.T) {
	at := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	p := Payout{ID: "p", Status: StatusScheduled}
	if err := p.MarkPaid(at); err != nil || p.Status != StatusPaid || p.PaidAt == nil {
		t.Fatalf("MarkPaid: %v %+v", err, p)
	}
	if err := p.MarkPaid(at); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("second MarkPaid want ErrInvalidState, got %v", err)
	}
	if err := p.Confirm("admin", at); err != nil || p.Status != StatusConfirmed {
		t.Fatalf("Confirm: %v %+v", err, p)
	}
	if err := p.Confirm("admin", at); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("second Confirm want ErrInvalidState, got %v", err)
	}

	direct := Payout{ID: "q", Status: StatusScheduled}
	if err := direct.Confirm("admin", at); err != nil || direct.PaidAt == nil {
		t.Fatalf("Confirm from scheduled: %v %+v", err, direct)
	}
}

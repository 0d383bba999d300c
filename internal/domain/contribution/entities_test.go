package contribution

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"merry/internal/domain/apperr"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestApplyPayment(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		status     Status
		paid       string
		amount     string
		wantStatus Status
		wantErr    error
	}{
		{"full payment", StatusPending, "0", "1000", StatusPaid, nil},
		{"partial payment", StatusPending, "0", "400", StatusPartial, nil},
		{"top up to full", StatusPartial, "400", "1000", StatusPaid, nil},
		{"same amount replay", StatusPartial, "400", "400", StatusPartial, nil},
		{"zero is partial", StatusPending, "0", "0", StatusPartial, nil},
		{"over amount due", StatusPending, "0", "1000.01", "", apperr.ErrValidation},
		{"negative", StatusPending, "0", "-1", "", apperr.ErrValidation},
		{"decreasing", StatusPartial, "500", "400", "", apperr.ErrValidation},
		{"confirmed", StatusConfirmed, "1000", "1000", "", apperr.ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Contribution{ID: "c1", AmountDue: d("1000"), AmountPaid: d(tt.paid), Status: tt.status}
			err := c.ApplyPayment(d(tt.amount), now, "mpesa")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				if !c.AmountPaid.Equal(d(tt.paid)) {
					t.Fatalf("amount_paid changed on error: %s", c.AmountPaid)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Status != tt.wantStatus || !c.AmountPaid.Equal(d(tt.amount)) {
				t.Fatalf("got status=%s paid=%s", c.Status, c.AmountPaid)
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	at := time.Now().UTC()
	for _, st := range []Status{StatusPaid, StatusPartial} {
		c := Contribution{ID: "c", Status: st}
		if err := c.Confirm("admin", at); err != nil {
			t.Fatalf("confirm from %s: %v", st, err)
		}
		if c.Status != StatusConfirmed || c.ConfirmedBy != "admin" || c.ConfirmedAt == nil {
			t.Fatalf("confirm from %s left %+v", st, c)
		}
	}
	for _, st := range []Status{StatusPending, StatusConfirmed} {
		c := Contribution{ID: "c", Status: st}
		if err := c.Confirm("admin", at); !errors.Is(err, apperr.ErrInvalidState) {
			t.Fatalf("confirm from %s: want ErrInvalidState, got %v", st, err)
		}
	}
}

func TestEffectiveStatus(t *testing.T) {
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	p := Policy{MissedAfter: 7 * 24 * time.Hour}
	tests := []struct {
		name   string
		status Status
		paid   string
		now    time.Time
		want   Status
	}{
		{"before due", StatusPending, "0", due.Add(-time.Hour), StatusPending},
		{"on due instant", StatusPending, "0", due, StatusPending},
		{"due day evening", StatusPartial, "100", due.Add(23 * time.Hour), StatusPartial},
		{"day after due", StatusPending, "0", due.AddDate(0, 0, 1), StatusLate},
		{"last day before missed", StatusPending, "0", due.AddDate(0, 0, 7).Add(10 * time.Hour), StatusLate},
		{"partial late", StatusPartial, "100", due.Add(30 * 24 * time.Hour), StatusLate},
		{"unpaid missed", StatusPending, "0", due.Add(8 * 24 * time.Hour), StatusMissed},
		{"paid never late", StatusPaid, "1000", due.Add(30 * 24 * time.Hour), StatusPaid},
		{"confirmed never late", StatusConfirmed, "1000", due.Add(30 * 24 * time.Hour), StatusConfirmed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Contribution{AmountDue: d("1000"), AmountPaid: d(tt.paid), Status: tt.status, DueDate: due}
			if got := EffectiveStatus(c, tt.now, p); got != tt.want {
				t.Fatalf("EffectiveStatus = %s, want %s", got, tt.want)
			}
		})
	}
}

package calendar

import (
	"testing"
	"time"
)

func TestOverdue(t *testing.T) {
	due := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		now     time.Time
		overdue bool
		days    int
	}{
		{"day before", due.Add(-time.Minute), false, 0},
		{"due day start", due, false, 0},
		{"due day morning", due.Add(8 * time.Hour), false, 0},
		{"due day last second", due.Add(24*time.Hour - time.Second), false, 0},
		{"day after", due.AddDate(0, 0, 1), true, 1},
		{"day after evening", due.AddDate(0, 0, 1).Add(23 * time.Hour), true, 1},
		{"five days later", due.AddDate(0, 0, 5).Add(12 * time.Hour), true, 5},
		{"other zone same instant", due.AddDate(0, 0, 1).In(time.FixedZone("EAT", 3*3600)), true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overdue(due, tt.now); got != tt.overdue {
				t.Fatalf("Overdue = %v, want %v", got, tt.overdue)
			}
			if got := DaysOverdue(due, tt.now); got != tt.days {
				t.Fatalf("DaysOverdue = %d, want %d", got, tt.days)
			}
		})
	}
}

func TestOverdueCutoffMatchesOverdue(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	for _, due := range []time.Time{
		time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
	} {
		if due.Before(OverdueCutoff(now)) != Overdue(due, now) {
			t.Fatalf("cutoff and Overdue disagree for due %v", due)
		}
	}
}

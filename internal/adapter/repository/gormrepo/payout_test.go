package gormrepo

import (
	"context"
	"testing"
	"time"

	"merry/internal/domain/cycle"
	"merry/internal/domain/payout"
	"merry/internal/testutil/dbtest"
	"merry/pkg/id"
)

func TestPayoutRepository_OnePerPeriod(t *testing.T) {
	gdb := dbtest.Open(t)
	repo := NewPayoutRepository(gdb)
	ctx := context.Background()
	c, seats := seedCycle(t, gdb, cycle.StatusActive, 1, 2)

	p := &payout.Payout{
		ID:            id.NewID32(),
		CycleID:       c.ID,
		CycleMemberID: seats[0].ID,
		UserID:        seats[0].UserID,
		PeriodNumber:  1,
		Amount:        c.PayoutAmount,
		Status:        payout.StatusScheduled,
		ScheduledDate: c.StartDate,
	}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ok, err := repo.ExistsForPeriod(ctx, c.ID, 1); err != nil || !ok {
		t.Fatalf("ExistsForPeriod(1) = %v, %v", ok, err)
	}
	if ok, _ := repo.ExistsForPeriod(ctx, c.ID, 2); ok {
		t.Fatalf("period 2 has no payout yet")
	}

	dup := *p
	dup.ID = id.NewID32()
	dup.CycleMemberID = seats[1].ID
	if err := repo.Create(ctx, &dup); err == nil {
		t.Fatalf("second payout for period 1 must be rejected")
	}

	if err := p.MarkPaid(time.Now().UTC()); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if err := repo.SaveStatus(ctx, p); err != nil {
		t.Fatalf("SaveStatus: %v", err)
	}
	got, _ := repo.GetByID(ctx, p.ID)
	if got.Status != payout.StatusPaid || got.PaidAt == nil {
		t.Fatalf("unexpected payout: %+v", got)
	}
}

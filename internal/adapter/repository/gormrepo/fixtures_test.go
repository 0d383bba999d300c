package gormrepo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"merry/internal/domain/chama"
	"merry/internal/domain/cycle"
	"merry/internal/testutil/dbtest"
	"merry/pkg/id"
)

func makeCycle(chamaID string, periods int, status cycle.Status, current int) *cycle.Cycle {
	return &cycle.Cycle{
		ID:                 id.NewID32(),
		ChamaID:            chamaID,
		Name:               "2026 rotation",
		ContributionAmount: decimal.NewFromInt(1000),
		PayoutAmount:       decimal.NewFromInt(3000),
		Frequency:          cycle.FrequencyMonthly,
		TotalPeriods:       periods,
		CurrentPeriod:      current,
		StartDate:          time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Status:             status,
	}
}

// seedCycle stores a cycle with one seat per chama member in slice order.
func seedCycle(t *testing.T, gdb *gorm.DB, status cycle.Status, current int, n int) (*cycle.Cycle, []cycle.Member) {
	t.Helper()
	ch, members := dbtest.SeedChama(t, gdb, chama.TypeMerryGoRound, n)
	c := makeCycle(ch.ID, n, status, current)
	repo := NewCycleRepository(gdb)
	ctx := context.Background()
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("create cycle: %v", err)
	}
	seats := make([]cycle.Member, n)
	for i, m := range members {
		seats[i] = cycle.Member{
			ID:             id.NewID32(),
			CycleID:        c.ID,
			ChamaMemberID:  m.ID,
			UserID:         m.UserID,
			TurnOrder:      i + 1,
			AssignedNumber: i + 1,
			Status:         cycle.MemberActive,
		}
	}
	if err := repo.CreateMembers(ctx, seats); err != nil {
		t.Fatalf("create members: %v", err)
	}
	return c, seats
}

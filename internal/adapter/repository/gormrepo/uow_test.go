package gormrepo

import (
	"context"
	"errors"
	"testing"

	"merry/internal/domain/apperr"
	"merry/internal/domain/chama"
	"merry/internal/domain/cycle"
	"merry/internal/domain/uow"
	"merry/internal/testutil/dbtest"
	"merry/pkg/id"
)

// ----------------------------- Tests -----------------------------

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	gdb := dbtest.Open(t)
	u := NewGormUoW(gdb)
	ctx := context.Background()
	ch, _ := dbtest.SeedChama(t, gdb, chama.TypeMerryGoRound, 2)

	c := makeCycle(ch.ID, 2, cycle.StatusPending, 0)
	err := u.WithinTx(ctx, func(r uow.Repos) error {
		return r.Cycles.Create(ctx, c)
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}

	got, err := u.Repos().Cycles.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID after commit: %v", err)
	}
	if got.Name != c.Name || got.TotalPeriods != 2 {
		t.Fatalf("unexpected cycle after commit: %+v", got)
	}
}

func TestGormUoW_WithinTx_RollbackOnError(t *testing.T) {
	gdb := dbtest.Open(t)
	u := NewGormUoW(gdb)
	ctx := context.Background()
	ch, _ := dbtest.SeedChama(t, gdb, chama.TypeMerryGoRound, 2)

	boom := errors.New("boom")
	c := makeCycle(ch.ID, 2, cycle.StatusPending, 0)
	err := u.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Cycles.Create(ctx, c); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}

	if _, err := u.Repos().Cycles.GetByID(ctx, c.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("cycle should be rolled back, got err=%v", err)
	}
}

func TestGormUoW_WithinCycleTx_LoadsRow(t *testing.T) {
	gdb := dbtest.Open(t)
	u := NewGormUoW(gdb)
	ctx := context.Background()
	c, _ := seedCycle(t, gdb, cycle.StatusActive, 1, 3)

	var seen string
	err := u.WithinCycleTx(ctx, c.ID, func(r uow.Repos, locked *cycle.Cycle) error {
		seen = locked.ID
		_, err := r.Cycles.AdvancePeriod(ctx, locked.ID, locked.CurrentPeriod)
		return err
	})
	if err != nil {
		t.Fatalf("WithinCycleTx: %v", err)
	}
	if seen != c.ID {
		t.Fatalf("callback saw %q, want %q", seen, c.ID)
	}
	got, _ := u.Repos().Cycles.GetByID(ctx, c.ID)
	if got.CurrentPeriod != 2 {
		t.Fatalf("current period = %d, want 2", got.CurrentPeriod)
	}
}

func TestGormUoW_WithinCycleTx_NotFound(t *testing.T) {
	u := NewGormUoW(dbtest.Open(t))
	called := false
	err := u.WithinCycleTx(context.Background(), id.NewID32(), func(uow.Repos, *cycle.Cycle) error {
		called = true
		return nil
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if called {
		t.Fatalf("callback must not run for a missing cycle")
	}
}

func TestGormUoW_WithinLoanTx_NotFound(t *testing.T) {
	u := NewGormUoW(dbtest.Open(t))
	err := u.WithinLoanTx(context.Background(), id.NewID32(), nil)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

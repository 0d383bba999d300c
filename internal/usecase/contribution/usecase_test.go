package contribution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"merry/internal/adapter/repository/gormrepo"
	"merry/internal/domain/apperr"
	"merry/internal/domain/chama"
	domain "merry/internal/domain/contribution"
	"merry/internal/domain/cycle"
	"merry/internal/domain/event"
	"merry/internal/domain/savings"
	"merry/internal/testutil/dbtest"
	"merry/internal/testutil/eventmock"
	cycleuc "merry/internal/usecase/cycle"
)

var (
	startDate = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	fixedNow  = time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
)

type fixture struct {
	gdb     *gorm.DB
	uc      *Usecase
	rec     *eventmock.Recorder
	chama   *chama.Chama
	members []chama.Member
	cycle   *cycleuc.CycleDTO
	// period 1 contributions keyed by user id
	byUser map[string]domain.Contribution
}

func setup(t *testing.T, typ chama.Type, n int) *fixture {
	t.Helper()
	gdb := dbtest.Open(t)
	u := gormrepo.NewGormUoW(gdb)
	ctx := context.Background()

	ch, members := dbtest.SeedChama(t, gdb, typ, n)
	cycles := cycleuc.NewUsecase(u.Repos(), u, nil, domain.Policy{})
	c, err := cycles.Create(ctx, cycleuc.CreateInput{
		ChamaID:            ch.ID,
		Name:               "January rotation",
		ContributionAmount: decimal.NewFromInt(1000),
		SavingsAmount:      decimal.NewFromInt(200),
		Frequency:          cycle.FrequencyWeekly,
		StartDate:          startDate,
		ChamaMemberIDs:     dbtest.MemberIDs(members),
	})
	if err != nil {
		t.Fatalf("create cycle: %v", err)
	}
	if _, err := cycles.Start(ctx, c.ID); err != nil {
		t.Fatalf("start cycle: %v", err)
	}

	rec := &eventmock.Recorder{}
	uc := NewUsecase(u.Repos(), u, rec, domain.Policy{MissedAfter: 7 * 24 * time.Hour})
	uc.now = func() time.Time { return fixedNow }

	cs, err := u.Repos().Contributions.ListByCycle(ctx, c.ID, 1)
	if err != nil {
		t.Fatalf("list contributions: %v", err)
	}
	byUser := make(map[string]domain.Contribution, len(cs))
	for _, x := range cs {
		byUser[x.UserID] = x
	}
	return &fixture{gdb: gdb, uc: uc, rec: rec, chama: ch, members: members, cycle: c, byUser: byUser}
}

func (f *fixture) contributionOf(i int) domain.Contribution {
	return f.byUser[f.members[i].UserID]
}

func TestRecordPayment_PartialThenPaid(t *testing.T) {
	f := setup(t, chama.TypeHybrid, 3)
	ctx := context.Background()
	c := f.contributionOf(1)

	got, err := f.uc.RecordPayment(ctx, RecordPaymentInput{
		ContributionID: c.ID,
		AmountPaid:     decimal.NewFromInt(600),
		ActorID:        c.UserID,
	})
	if err != nil {
		t.Fatalf("RecordPayment(600): %v", err)
	}
	if got.Status != domain.StatusPartial || !got.AmountPaid.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("after 600: status=%s paid=%s", got.Status, got.AmountPaid)
	}
	if got.EffectiveStatus != domain.StatusPartial {
		t.Fatalf("partial on its due day should not read late, got %s", got.EffectiveStatus)
	}

	got, err = f.uc.RecordPayment(ctx, RecordPaymentInput{
		ContributionID: c.ID,
		AmountPaid:     decimal.NewFromInt(1000),
		ActorID:        c.UserID,
		Notes:          "mpesa QK12ABC",
	})
	if err != nil {
		t.Fatalf("RecordPayment(1000): %v", err)
	}
	if got.Status != domain.StatusPaid || got.EffectiveStatus != domain.StatusPaid {
		t.Fatalf("after 1000: status=%s effective=%s", got.Status, got.EffectiveStatus)
	}
	if got.PaidAt == nil || !got.PaidAt.Equal(fixedNow) {
		t.Fatalf("paid_at = %v", got.PaidAt)
	}

	stored, err := f.uc.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !stored.AmountPaid.Equal(decimal.NewFromInt(1000)) || stored.Notes != "mpesa QK12ABC" {
		t.Fatalf("stored = %+v", stored.Contribution)
	}
	paidEvents := f.rec.OfType(event.ContributionPaid)
	if len(paidEvents) != 2 {
		t.Fatalf("contribution_paid events = %d, want 2", len(paidEvents))
	}
	for _, e := range paidEvents {
		if e.ChamaID != f.chama.ID {
			t.Fatalf("contribution_paid chama = %q, want %q", e.ChamaID, f.chama.ID)
		}
	}
}

func TestRecordPayment_Rejects(t *testing.T) {
	f := setup(t, chama.TypeHybrid, 2)
	ctx := context.Background()
	c := f.contributionOf(1)
	admin := f.members[0].UserID

	if _, err := f.uc.RecordPayment(ctx, RecordPaymentInput{ContributionID: c.ID, AmountPaid: decimal.NewFromInt(500), ActorID: admin, ActorAdmin: true}); err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	tests := []struct {
		name string
		in   RecordPaymentInput
		want error
	}{
		{"over due", RecordPaymentInput{AmountPaid: decimal.NewFromInt(1001), ActorID: c.UserID}, apperr.ErrValidation},
		{"negative", RecordPaymentInput{AmountPaid: decimal.NewFromInt(-1), ActorID: c.UserID}, apperr.ErrValidation},
		{"below recorded", RecordPaymentInput{AmountPaid: decimal.NewFromInt(400), ActorID: c.UserID}, apperr.ErrValidation},
		{"other member", RecordPaymentInput{AmountPaid: decimal.NewFromInt(700), ActorID: f.members[0].UserID}, apperr.ErrForbidden},
		{"unknown contribution", RecordPaymentInput{AmountPaid: decimal.NewFromInt(700), ActorID: c.UserID}, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			in.ContributionID = c.ID
			if tt.want == apperr.ErrNotFound {
				in.ContributionID = "ffffffffffffffffffffffffffffffff"
			}
			if _, err := f.uc.RecordPayment(ctx, in); !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}

	stored, err := f.uc.Get(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.AmountPaid.Equal(decimal.NewFromInt(500)) || stored.Status != domain.StatusPartial {
		t.Fatalf("rejected payments changed the row: %+v", stored.Contribution)
	}
}

func TestConfirm_CreditsSavings(t *testing.T) {
	f := setup(t, chama.TypeHybrid, 3)
	ctx := context.Background()
	admin := f.members[0].UserID
	repos := gormrepo.NewRepos(f.gdb)

	// member 2 saves a custom amount
	custom := decimal.NewFromInt(350)
	if err := repos.Cycles.UpdateMemberSettings(ctx, f.cycle.Members[2].ID, cycle.MemberSettings{CustomSavingsAmount: &custom}); err != nil {
		t.Fatal(err)
	}

	for i, want := range []int64{200, 350} {
		c := f.contributionOf(i + 1)
		if _, err := f.uc.RecordPayment(ctx, RecordPaymentInput{ContributionID: c.ID, AmountPaid: decimal.NewFromInt(1000), ActorID: admin, ActorAdmin: true}); err != nil {
			t.Fatalf("pay: %v", err)
		}
		res, err := f.uc.Confirm(ctx, c.ID, admin)
		if err != nil {
			t.Fatalf("Confirm: %v", err)
		}
		if res.Contribution.Status != domain.StatusConfirmed || res.Contribution.ConfirmedBy != admin {
			t.Fatalf("confirmed row = %+v", res.Contribution.Contribution)
		}
		if res.Savings == nil || !res.Savings.Amount.Equal(decimal.NewFromInt(want)) || res.Savings.Reason != savings.ReasonContribution {
			t.Fatalf("savings txn = %+v, want credit %d", res.Savings, want)
		}
		acct, err := repos.Savings.GetByUser(ctx, c.UserID, f.chama.ID)
		if err != nil {
			t.Fatalf("account: %v", err)
		}
		if !acct.Balance.Equal(decimal.NewFromInt(want)) {
			t.Fatalf("balance = %s, want %d", acct.Balance, want)
		}
	}

	// a confirmed contribution is closed
	c := f.contributionOf(1)
	if _, err := f.uc.Confirm(ctx, c.ID, admin); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("second confirm: want ErrInvalidState, got %v", err)
	}
	if _, err := f.uc.RecordPayment(ctx, RecordPaymentInput{ContributionID: c.ID, AmountPaid: decimal.NewFromInt(1000), ActorID: admin, ActorAdmin: true}); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("pay after confirm: want ErrInvalidState, got %v", err)
	}
	if n := len(f.rec.OfType(event.ContributionConfirmed)); n != 2 {
		t.Fatalf("contribution_confirmed events = %d", n)
	}
}

func TestConfirm_MerryGoRoundSkipsSavings(t *testing.T) {
	f := setup(t, chama.TypeMerryGoRound, 2)
	ctx := context.Background()
	admin := f.members[0].UserID
	c := f.contributionOf(1)

	if _, err := f.uc.RecordPayment(ctx, RecordPaymentInput{ContributionID: c.ID, AmountPaid: decimal.NewFromInt(1000), ActorID: c.UserID}); err != nil {
		t.Fatal(err)
	}
	res, err := f.uc.Confirm(ctx, c.ID, admin)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if res.Savings != nil {
		t.Fatalf("merry-go-round credited savings: %+v", res.Savings)
	}
	if _, err := gormrepo.NewRepos(f.gdb).Savings.GetByUser(ctx, c.UserID, f.chama.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("no account expected, got %v", err)
	}
}

func TestConfirm_RequiresPayment(t *testing.T) {
	f := setup(t, chama.TypeSavings, 2)
	c := f.contributionOf(1)
	if _, err := f.uc.Confirm(context.Background(), c.ID, f.members[0].UserID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("confirm pending: want ErrInvalidState, got %v", err)
	}
}

func TestListByCycle_DerivedStatuses(t *testing.T) {
	f := setup(t, chama.TypeSavings, 3)
	ctx := context.Background()

	if _, err := f.uc.RecordPayment(ctx, RecordPaymentInput{ContributionID: f.contributionOf(0).ID, AmountPaid: decimal.NewFromInt(1000), ActorID: f.members[0].UserID}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.uc.RecordPayment(ctx, RecordPaymentInput{ContributionID: f.contributionOf(1).ID, AmountPaid: decimal.NewFromInt(100), ActorID: f.members[1].UserID}); err != nil {
		t.Fatal(err)
	}

	f.uc.now = func() time.Time { return startDate.AddDate(0, 0, 9) }
	views, err := f.uc.ListByCycle(ctx, f.cycle.ID, 0)
	if err != nil {
		t.Fatalf("ListByCycle: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("views = %d", len(views))
	}
	want := map[string]domain.Status{
		f.members[0].UserID: domain.StatusPaid,
		f.members[1].UserID: domain.StatusLate,
		f.members[2].UserID: domain.StatusMissed,
	}
	for _, v := range views {
		if v.EffectiveStatus != want[v.UserID] {
			t.Fatalf("user %s effective=%s want %s", v.UserID, v.EffectiveStatus, want[v.UserID])
		}
	}

	overdue, err := f.uc.Overdue(ctx, OverdueQuery{Limit: 10})
	if err != nil {
		t.Fatalf("Overdue: %v", err)
	}
	if len(overdue) != 2 {
		t.Fatalf("overdue = %d, want 2", len(overdue))
	}
	next, err := f.uc.Overdue(ctx, OverdueQuery{After: &overdue[0], Limit: 10})
	if err != nil {
		t.Fatalf("Overdue after: %v", err)
	}
	if len(next) != 1 || next[0].ID != overdue[1].ID {
		t.Fatalf("page after first = %+v", next)
	}
	other, err := f.uc.Overdue(ctx, OverdueQuery{ChamaID: "ffffffffffffffffffffffffffffffff", Limit: 10})
	if err != nil || len(other) != 0 {
		t.Fatalf("other chama overdue = %d, %v", len(other), err)
	}

	// nothing is overdue until the due day has ended
	f.uc.now = func() time.Time { return startDate.Add(23 * time.Hour) }
	if onDueDay, err := f.uc.Overdue(ctx, OverdueQuery{Limit: 10}); err != nil || len(onDueDay) != 0 {
		t.Fatalf("overdue on due day = %d, %v", len(onDueDay), err)
	}

	if _, err := f.uc.ListByCycle(ctx, "ffffffffffffffffffffffffffffffff", 0); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown cycle: want ErrNotFound, got %v", err)
	}
}

package notify

import (
	"context"
	"log/slog"
	"time"

	"merry/internal/domain/chama"
	"merry/internal/domain/contribution"
	"merry/internal/domain/cycle"
	"merry/internal/domain/event"
	"merry/internal/infrastructure/metrics"
	contributionuc "merry/internal/usecase/contribution"
)

// Sender delivers a text message to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, text string) error
}

// Guard dedupes side effects by key; cache.OnceGuard implements it.
type Guard interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type noGuard struct{}

func (noGuard) Claim(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (noGuard) Release(context.Context, string) error                     { return nil }

const claimTTL = 36 * time.Hour

// Reminders sends WhatsApp reminders for contributions_due events. Each
// recipient is handled on its own: a failure is logged and the rest still go
// out, and at most one reminder per contribution is sent per day.
type Reminders struct {
	members chama.Repository
	sender  Sender
	guard   Guard
	now     func() time.Time
}

func NewReminders(members chama.Repository, sender Sender, guard Guard) *Reminders {
	if guard == nil {
		guard = noGuard{}
	}
	return &Reminders{members: members, sender: sender, guard: guard, now: func() time.Time { return time.Now().UTC() }}
}

// Outcome counts what one batch of reminders did.
type Outcome struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

func (r *Reminders) Handle(ctx context.Context, e event.Event) error {
	if e.Type != event.ContributionsDue || len(e.Dues) == 0 {
		return nil
	}
	_, err := r.Remind(ctx, e.ChamaID, e.Dues)
	return err
}

// Remind sends one message per due. Only the member lookup can fail the call.
func (r *Reminders) Remind(ctx context.Context, chamaID string, dues []event.Due) (Outcome, error) {
	var out Outcome
	users := make([]string, 0, len(dues))
	for _, d := range dues {
		users = append(users, d.UserID)
	}
	ms, err := r.members.ListMembersByUsers(ctx, chamaID, users)
	if err != nil {
		return out, err
	}
	byUser := make(map[string]chama.Member, len(ms))
	for _, m := range ms {
		byUser[m.UserID] = m
	}

	today := r.now().Format("20060102")
	for _, d := range dues {
		m, ok := byUser[d.UserID]
		if !ok || m.Phone == "" || m.Status != chama.MemberActive {
			out.Skipped++
			metrics.RemindersSent.WithLabelValues("skipped").Inc()
			continue
		}
		key := d.ContributionID + ":" + today
		claimed, err := r.guard.Claim(ctx, key, claimTTL)
		if err != nil {
			// counted as failed; the next sweep retries
			slog.WarnContext(ctx, "reminder dedupe unavailable", "contribution_id", d.ContributionID, "err", err)
			out.Failed++
			metrics.RemindersSent.WithLabelValues("failed").Inc()
			continue
		}
		if !claimed {
			out.Skipped++
			metrics.RemindersSent.WithLabelValues("skipped").Inc()
			continue
		}
		if err := r.sender.Send(ctx, m.Phone, reminderText(m.DisplayName, d)); err != nil {
			slog.ErrorContext(ctx, "whatsapp reminder failed",
				"contribution_id", d.ContributionID, "user_id", d.UserID, "err", err)
			if rerr := r.guard.Release(ctx, key); rerr != nil {
				slog.WarnContext(ctx, "release reminder claim", "key", key, "err", rerr)
			}
			out.Failed++
			metrics.RemindersSent.WithLabelValues("failed").Inc()
			continue
		}
		out.Sent++
		metrics.RemindersSent.WithLabelValues("sent").Inc()
	}
	return out, nil
}

// OverdueSource pages through overdue contributions; the contribution use
// case implements it.
type OverdueSource interface {
	Overdue(ctx context.Context, q contributionuc.OverdueQuery) ([]contribution.View, error)
}

// Sweeper sends late reminders for every overdue contribution.
type Sweeper struct {
	overdue   OverdueSource
	cycles    cycle.Repository
	reminders *Reminders
	batch     int
}

func NewSweeper(overdue OverdueSource, cycles cycle.Repository, reminders *Reminders, batch int) *Sweeper {
	if batch <= 0 {
		batch = 200
	}
	return &Sweeper{overdue: overdue, cycles: cycles, reminders: reminders, batch: batch}
}

// Sweep runs one pass over every overdue contribution, batch rows at a time.
// Cycles that fail to load are logged and skipped.
func (s *Sweeper) Sweep(ctx context.Context) (Outcome, error) {
	var total Outcome
	q := contributionuc.OverdueQuery{Limit: s.batch}
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		views, err := s.overdue.Overdue(ctx, q)
		if err != nil {
			return total, err
		}
		out := s.remindPage(ctx, views)
		total.Sent += out.Sent
		total.Failed += out.Failed
		total.Skipped += out.Skipped
		if len(views) < s.batch {
			return total, nil
		}
		q.After = &views[len(views)-1]
	}
}

func (s *Sweeper) remindPage(ctx context.Context, views []contribution.View) Outcome {
	var total Outcome

	// group per cycle so member lookups stay scoped to one chama
	var order []string
	byCycle := make(map[string][]event.Due)
	for _, v := range views {
		if _, seen := byCycle[v.CycleID]; !seen {
			order = append(order, v.CycleID)
		}
		byCycle[v.CycleID] = append(byCycle[v.CycleID], event.Due{
			ContributionID: v.ID,
			UserID:         v.UserID,
			Amount:         v.Outstanding(),
			DueDate:        v.DueDate,
			Late:           true,
		})
	}

	for _, cycleID := range order {
		c, err := s.cycles.GetByID(ctx, cycleID)
		if err != nil {
			slog.ErrorContext(ctx, "sweep: load cycle", "cycle_id", cycleID, "err", err)
			continue
		}
		out, err := s.reminders.Remind(ctx, c.ChamaID, byCycle[cycleID])
		if err != nil {
			slog.ErrorContext(ctx, "sweep: remind", "cycle_id", cycleID, "err", err)
			continue
		}
		total.Sent += out.Sent
		total.Failed += out.Failed
		total.Skipped += out.Skipped
	}
	return total
}

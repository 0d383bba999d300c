// Package app wires repositories, use cases and event handlers from config.
// cmd/api, cmd/worker and cmd/merryctl share it.
package app

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	httpadp "merry/internal/adapter/http"
	"merry/internal/adapter/repository/gormrepo"
	"merry/internal/adapter/whatsapp"
	"merry/internal/config"
	"merry/internal/domain/contribution"
	"merry/internal/domain/loan"
	"merry/internal/domain/uow"
	"merry/internal/infrastructure/cache"
	"merry/internal/notify"
	chamauc "merry/internal/usecase/chama"
	contributionuc "merry/internal/usecase/contribution"
	cycleuc "merry/internal/usecase/cycle"
	loanuc "merry/internal/usecase/loan"
	payoutuc "merry/internal/usecase/payout"
	savingsuc "merry/internal/usecase/savings"
)

type App struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	UoW    *gormrepo.GormUoW
	Repos  uow.Repos
	Events *notify.Dispatcher

	// Reminders and Sweeper are nil when no WhatsApp gateway is configured.
	Reminders *notify.Reminders
	Sweeper   *notify.Sweeper

	Chamas        *chamauc.Usecase
	Cycles        *cycleuc.Usecase
	Contributions *contributionuc.Usecase
	Payouts       *payoutuc.Usecase
	Loans         *loanuc.Usecase
	Savings       *savingsuc.Usecase
}

// New builds the object graph. rdb may be nil; reminders then run without
// cross-process dedupe.
func New(cfg *config.Config, gdb *gorm.DB, rdb *redis.Client, opts ...whatsapp.Option) *App {
	u := gormrepo.NewGormUoW(gdb)
	repos := u.Repos()
	a := &App{Config: cfg, DB: gdb, Redis: rdb, UoW: u, Repos: repos}

	a.Events = notify.NewDispatcher(cfg.AsyncEvents).
		Register("notifications", notify.Notifications(notify.NewSink(repos.Notifications, repos.Cycles))).
		Register("metrics", notify.Metrics())

	cpolicy := contribution.Policy{MissedAfter: cfg.MissedAfter()}
	lpolicy := loan.PenaltyPolicy{DailyRate: cfg.PenaltyDailyRate, MaxRate: cfg.PenaltyMaxRate}

	a.Chamas = chamauc.NewUsecase(repos, u)
	a.Cycles = cycleuc.NewUsecase(repos, u, a.Events, cpolicy)
	a.Contributions = contributionuc.NewUsecase(repos, u, a.Events, cpolicy)
	a.Payouts = payoutuc.NewUsecase(repos, u, a.Events)
	a.Loans = loanuc.NewUsecase(repos, u, a.Events, lpolicy)
	a.Savings = savingsuc.NewUsecase(repos, u)

	if cfg.WAHABaseURL == "" {
		slog.Warn("WAHA_BASE_URL not set; WhatsApp reminders disabled")
		return a
	}
	var guard notify.Guard
	if rdb != nil {
		guard = cache.NewOnceGuard(rdb, "merry:reminder:")
	}
	sender := whatsapp.NewClient(cfg.WAHABaseURL, cfg.WAHAAPIKey, cfg.WAHASession, opts...)
	a.Reminders = notify.NewReminders(repos.Chamas, sender, guard)
	a.Sweeper = notify.NewSweeper(a.Contributions, repos.Cycles, a.Reminders, cfg.ReminderBatchSize)
	a.Events.Register("reminders", a.Reminders)
	return a
}

func (a *App) Handlers() httpadp.Handlers {
	return httpadp.Handlers{
		Health:        httpadp.NewHandler(),
		Chamas:        httpadp.NewChamaHandler(a.Chamas),
		Cycles:        httpadp.NewCycleHandler(a.Cycles),
		Contributions: httpadp.NewContributionHandler(a.Contributions),
		Payouts:       httpadp.NewPayoutHandler(a.Payouts),
		Loans:         httpadp.NewLoanHandler(a.Loans),
		Savings:       httpadp.NewSavingsHandler(a.Savings),
		Notifications: httpadp.NewNotificationHandler(a.Repos.Notifications),
		Access:        httpadp.NewAccess(a.Repos),
	}
}

package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"merry/internal/adapter/middleware"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Handlers bundles everything Routes mounts.
type Handlers struct {
	Health        *Handler
	Chamas        *ChamaHandler
	Cycles        *CycleHandler
	Contributions *ContributionHandler
	Payouts       *PayoutHandler
	Loans         *LoanHandler
	Savings       *SavingsHandler
	Notifications *NotificationHandler
	Access        *Access
}

// Routes mounts the API under /api/v1. idem wraps every authenticated route
// and may be nil.
func Routes(e *echo.Echo, h Handlers, idem echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	mw := []echo.MiddlewareFunc{middleware.Identify()}
	if idem != nil {
		mw = append(mw, idem)
	}
	api := e.Group("/api/v1", mw...)
	member := h.Access.Member()
	admin := h.Access.Admin()

	// chamas
	api.POST("/chamas", h.Chamas.CreateChama)
	api.GET("/chamas/:chama_id", h.Chamas.GetChama, member)
	api.POST("/chamas/:chama_id/members", h.Chamas.AddMember, admin)
	api.PUT("/chamas/:chama_id/members/:member_id/status", h.Chamas.SetMemberStatus, admin)

	// cycles
	api.POST("/chamas/:chama_id/cycles", h.Cycles.CreateCycle, admin)
	api.GET("/chamas/:chama_id/cycles", h.Cycles.ListCycles, member)
	api.GET("/cycles/:cycle_id", h.Cycles.GetCycle, member)
	api.GET("/cycles/:cycle_id/summary", h.Cycles.Summary, member)
	api.POST("/cycles/:cycle_id/start", h.Cycles.Start, admin)
	api.POST("/cycles/:cycle_id/advance", h.Cycles.Advance, admin)
	api.POST("/cycles/:cycle_id/pause", h.Cycles.Pause, admin)
	api.POST("/cycles/:cycle_id/resume", h.Cycles.Resume, admin)
	api.POST("/cycles/:cycle_id/cancel", h.Cycles.Cancel, admin)
	api.POST("/cycles/:cycle_id/turn-order/shuffle", h.Cycles.ShuffleTurnOrder, admin)
	api.PUT("/cycles/:cycle_id/turn-order", h.Cycles.SetTurnOrder, admin)
	api.GET("/cycles/:cycle_id/members/:member_id", h.Cycles.MemberStatus, member)
	api.PATCH("/cycles/:cycle_id/members/:member_id", h.Cycles.UpdateMemberSettings, admin)
	api.PUT("/cycles/:cycle_id/members/:member_id/status", h.Cycles.UpdateMemberStatus, admin)

	// contributions
	api.GET("/cycles/:cycle_id/contributions", h.Contributions.ListByCycle, member)
	api.GET("/chamas/:chama_id/contributions/overdue", h.Contributions.Overdue, admin)
	api.GET("/contributions/:contribution_id", h.Contributions.GetContribution, member)
	api.POST("/contributions/:contribution_id/payments", h.Contributions.RecordPayment, member)
	api.POST("/contributions/:contribution_id/confirm", h.Contributions.Confirm, admin)

	// payouts
	api.GET("/cycles/:cycle_id/payouts", h.Payouts.ListByCycle, member)
	api.GET("/payouts/:payout_id", h.Payouts.GetPayout, member)
	api.POST("/payouts/:payout_id/paid", h.Payouts.MarkPaid, admin)
	api.POST("/payouts/:payout_id/confirm", h.Payouts.Confirm, admin)

	// loans
	api.POST("/chamas/:chama_id/loans", h.Loans.RequestLoan, member)
	api.GET("/chamas/:chama_id/loans", h.Loans.ListLoans, member)
	api.GET("/loans/:loan_id", h.Loans.GetLoan, member)
	api.GET("/loans/:loan_id/breakdown", h.Loans.Breakdown, member)
	api.POST("/loans/:loan_id/guarantee", h.Loans.RespondGuarantee, member)
	api.POST("/loans/:loan_id/approve", h.Loans.Approve, admin)
	api.POST("/loans/:loan_id/disburse", h.Loans.Disburse, admin)
	api.POST("/loans/:loan_id/payments", h.Loans.RecordPayment, member)
	api.POST("/loans/:loan_id/cancel", h.Loans.Cancel, member)
	api.POST("/loans/:loan_id/default", h.Loans.MarkDefaulted, admin)

	// savings
	api.GET("/chamas/:chama_id/savings/:user_id", h.Savings.Statement, member)
	api.GET("/chamas/:chama_id/savings/:user_id/reconcile", h.Savings.Reconcile, admin)
	api.POST("/chamas/:chama_id/savings/withdrawals", h.Savings.Withdraw, member)
	api.POST("/chamas/:chama_id/savings/adjustments", h.Savings.Adjust, admin)

	// notifications
	api.GET("/notifications", h.Notifications.List)
	api.POST("/notifications/:notification_id/read", h.Notifications.MarkRead)
}

package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"merry/internal/adapter/middleware"
	"merry/internal/usecase/contribution"
)

type ContributionHandler struct{ uc *contribution.Usecase }

func NewContributionHandler(uc *contribution.Usecase) *ContributionHandler {
	return &ContributionHandler{uc: uc}
}

type recordPaymentReq struct {
	// AmountPaid is the cumulative amount received for the period.
	AmountPaid decimal.Decimal `json:"amount_paid" validate:"gte=0,dec2"`
	PaidAt     *time.Time      `json:"paid_at"`
	Notes      string          `json:"notes"       validate:"max=1000"`
}

func (h *ContributionHandler) RecordPayment(c echo.Context) error {
	contributionID, ok, err := pathID(c, "contribution_id")
	if !ok {
		return err
	}
	var req recordPaymentReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	who := middleware.IdentityFrom(c)
	v, err := h.uc.RecordPayment(c.Request().Context(), contribution.RecordPaymentInput{
		ContributionID: contributionID,
		AmountPaid:     req.AmountPaid,
		PaidAt:         req.PaidAt,
		Notes:          req.Notes,
		ActorID:        who.UserID,
		ActorAdmin:     callerIsAdmin(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *ContributionHandler) Confirm(c echo.Context) error {
	contributionID, ok, err := pathID(c, "contribution_id")
	if !ok {
		return err
	}
	res, err := h.uc.Confirm(c.Request().Context(), contributionID, middleware.IdentityFrom(c).UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ContributionHandler) GetContribution(c echo.Context) error {
	contributionID, ok, err := pathID(c, "contribution_id")
	if !ok {
		return err
	}
	v, err := h.uc.Get(c.Request().Context(), contributionID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// ListByCycle lists a cycle's contributions; ?period=N narrows to one period.
func (h *ContributionHandler) ListByCycle(c echo.Context) error {
	cycleID, ok, err := pathID(c, "cycle_id")
	if !ok {
		return err
	}
	period, err := queryInt(c, "period", 0)
	if err != nil || period < 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid period"})
	}
	vs, err := h.uc.ListByCycle(c.Request().Context(), cycleID, period)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"contributions": vs})
}

// Overdue lists a chama's overdue contributions, oldest first.
func (h *ContributionHandler) Overdue(c echo.Context) error {
	chamaID, ok, err := pathID(c, "chama_id")
	if !ok {
		return err
	}
	limit, err := queryInt(c, "limit", 100)
	if err != nil || limit < 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	vs, err := h.uc.Overdue(c.Request().Context(), contribution.OverdueQuery{ChamaID: chamaID, Limit: limit})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"contributions": vs})
}

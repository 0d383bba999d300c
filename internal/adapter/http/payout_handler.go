package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"merry/internal/adapter/middleware"
	"merry/internal/usecase/payout"
)

type PayoutHandler struct{ uc *payout.Usecase }

func NewPayoutHandler(uc *payout.Usecase) *PayoutHandler { return &PayoutHandler{uc: uc} }

func (h *PayoutHandler) GetPayout(c echo.Context) error {
	payoutID, ok, err := pathID(c, "payout_id")
	if !ok {
		return err
	}
	p, err := h.uc.Get(c.Request().Context(), payoutID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PayoutHandler) ListByCycle(c echo.Context) error {
	cycleID, ok, err := pathID(c, "cycle_id")
	if !ok {
		return err
	}
	ps, err := h.uc.ListByCycle(c.Request().Context(), cycleID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"payouts": ps})
}

func (h *PayoutHandler) MarkPaid(c echo.Context) error {
	payoutID, ok, err := pathID(c, "payout_id")
	if !ok {
		return err
	}
	p, err := h.uc.MarkPaid(c.Request().Context(), payoutID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PayoutHandler) Confirm(c echo.Context) error {
	payoutID, ok, err := pathID(c, "payout_id")
	if !ok {
		return err
	}
	p, err := h.uc.Confirm(c.Request().Context(), payoutID, middleware.IdentityFrom(c).UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

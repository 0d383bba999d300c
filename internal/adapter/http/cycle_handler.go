package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"merry/internal/adapter/middleware"
	domain "merry/internal/domain/cycle"
	"merry/internal/usecase/cycle"
)

type CycleHandler struct{ uc *cycle.Usecase }

func NewCycleHandler(uc *cycle.Usecase) *CycleHandler { return &CycleHandler{uc: uc} }

type createCycleReq struct {
	Name               string          `json:"name"                validate:"required,max=255"`
	ContributionAmount decimal.Decimal `json:"contribution_amount" validate:"gte=0,dec2"`
	PayoutAmount       decimal.Decimal `json:"payout_amount"       validate:"gte=0,dec2"`
	SavingsAmount      decimal.Decimal `json:"savings_amount"      validate:"gte=0,dec2"`
	ServiceFee         decimal.Decimal `json:"service_fee"         validate:"gte=0,dec2"`
	Frequency          string          `json:"frequency"           validate:"required,oneof=weekly biweekly monthly"`
	TotalPeriods       int             `json:"total_periods"       validate:"gte=0,lte=520"`
	StartDate          string          `json:"start_date"          validate:"required,datetime=2006-01-02"`
	ChamaMemberIDs     []string        `json:"chama_member_ids"    validate:"required,min=1,dive,hex32"`
	Shuffle            bool            `json:"shuffle"`
}

func (h *CycleHandler) CreateCycle(c echo.Context) error {
	chamaID, ok, err := pathID(c, "chama_id")
	if !ok {
		return err
	}
	var req createCycleReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), cycle.CreateInput{
		ChamaID:            chamaID,
		Name:               req.Name,
		ContributionAmount: req.ContributionAmount,
		PayoutAmount:       req.PayoutAmount,
		SavingsAmount:      req.SavingsAmount,
		ServiceFee:         req.ServiceFee,
		Frequency:          domain.Frequency(req.Frequency),
		TotalPeriods:       req.TotalPeriods,
		StartDate:          parseDate(req.StartDate),
		ChamaMemberIDs:     req.ChamaMemberIDs,
		Shuffle:            req.Shuffle,
		CreatedBy:          middleware.IdentityFrom(c).UserID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *CycleHandler) ListCycles(c echo.Context) error {
	chamaID, ok, err := pathID(c, "chama_id")
	if !ok {
		return err
	}
	cs, err := h.uc.ListByChama(c.Request().Context(), chamaID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"cycles": cs})
}

func (h *CycleHandler) GetCycle(c echo.Context) error {
	cycleID, ok, err := pathID(c, "cycle_id")
	if !ok {
		return err
	}
	dto, err := h.uc.Get(c.Request().Context(), cycleID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *CycleHandler) Summary(c echo.Context) error {
	cycleID, ok, err := pathID(c, "cycle_id")
	if !ok {
		return err
	}
	s, err := h.uc.Summary(c.Request().Context(), cycleID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *CycleHandler) Start(c echo.Context) error {
	cycleID, ok, err := pathID(c, "cycle_id")
	if !ok {
		return err
	}
	res, err := h.uc.Start(c.Request().Context(), cycleID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type advanceReq struct {
	ExpectedPeriod int `json:"expected_period" validate:"required,gte=1"`
}

// Advance moves the cycle one period forward. expected_period is the period
// the client saw, so a retry cannot advance twice.
func (h *CycleHandler) Advance(c echo.Context) error {
	cycleID, ok, err := pathID(c, "cycle_id")
	if !ok {
		return err
	}
	var req advanceReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	res, err := h.uc.Advance(c.Request().Context(), cycle.AdvanceInput{CycleID: cycleID, ExpectedPeriod: req.ExpectedPeriod})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CycleHandler) Pause(c echo.Context) error  { return h.simple(c, h.uc.Pause) }
func (h *CycleHandler) Resume(c echo.Context) error { return h.simple(c, h.uc.Resume) }
func (h *CycleHandler) Cancel(c echo.Context) error { return h.simple(c, h.uc.Cancel) }

func (h *CycleHandler) simple(c echo.Context, fn func(ctx context.Context, cycleID string) (*domain.Cycle, error)) error {
	cycleID, ok, err := pathID(c, "cycle_id")
	if !ok {
		return err
	}
	cy, err := fn(c.Request().Context(), cycleID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cy)
}

func (h *CycleHandler) ShuffleTurnOrder(c echo.Context) error {
	cycleID, ok, err := pathID(c, "cycle_id")
	if !ok {
		return err
	}
	ms, err := h.uc.ShuffleTurnOrder(c.Request().Context(), cycleID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"members": ms})
}

type turnOrderReq struct {
	CycleMemberIDs []string `json:"cycle_member_ids" validate:"required,min=1,dive,hex32"`
}

func (h *CycleHandler) SetTurnOrder(c echo.Context) error {
	cycleID, ok, err := pathID(c, "cycle_id")
	if !ok {
		return err
	}
	var req turnOrderReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ms, err := h.uc.SetTurnOrder(c.Request().Context(), cycleID, req.CycleMemberIDs)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"members": ms})
}

type memberSettingsReq struct {
	CustomSavingsAmount *decimal.Decimal `json:"custom_savings_amount" validate:"omitempty,gte=0,dec2"`
	ClearCustomSavings  bool             `json:"clear_custom_savings"`
	HideSavings         *bool            `json:"hide_savings"`
}

func (h *CycleHandler) UpdateMemberSettings(c echo.Context) error {
	cycleID, ok, err := pathID(c, "cycle_id")
	if !ok {
		return err
	}
	memberID, ok, err := pathID(c, "member_id")
	if !ok {
		return err
	}
	var req memberSettingsReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	m, err := h.uc.UpdateMemberSettings(c.Request().Context(), cycleID, memberID, domain.MemberSettings(req))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *CycleHandler) UpdateMemberStatus(c echo.Context) error {
	cycleID, ok, err := pathID(c, "cycle_id")
	if !ok {
		return err
	}
	memberID, ok, err := pathID(c, "member_id")
	if !ok {
		return err
	}
	var req memberStatusReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	m, err := h.uc.UpdateMemberStatus(c.Request().Context(), cycleID, memberID, domain.MemberStatus(req.Status))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *CycleHandler) MemberStatus(c echo.Context) error {
	cycleID, ok, err := pathID(c, "cycle_id")
	if !ok {
		return err
	}
	memberID, ok, err := pathID(c, "member_id")
	if !ok {
		return err
	}
	ms, err := h.uc.MemberStatus(c.Request().Context(), cycleID, memberID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ms)
}

package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"merry/internal/adapter/middleware"
	domain "merry/internal/domain/loan"
	"merry/internal/usecase/loan"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type requestLoanReq struct {
	Amount           decimal.Decimal `json:"amount"             validate:"gt=0,dec2"`
	DueDate          string          `json:"due_date"           validate:"required,datetime=2006-01-02"`
	Purpose          string          `json:"purpose"            validate:"max=1000"`
	GuarantorUserIDs []string        `json:"guarantor_user_ids" validate:"required,min=1,dive,hex32"`
}

// RequestLoan files a loan for the caller in the chama named by the path.
func (h *LoanHandler) RequestLoan(c echo.Context) error {
	chamaID, ok, err := pathID(c, "chama_id")
	if !ok {
		return err
	}
	var req requestLoanReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Request(c.Request().Context(), loan.RequestInput{
		ChamaID:          chamaID,
		BorrowerID:       middleware.IdentityFrom(c).UserID,
		Amount:           req.Amount,
		DueDate:          parseDate(req.DueDate),
		Purpose:          req.Purpose,
		GuarantorUserIDs: req.GuarantorUserIDs,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	dto, err := h.uc.Get(c.Request().Context(), loanID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Breakdown prices the loan at ?at=YYYY-MM-DD, defaulting to now.
func (h *LoanHandler) Breakdown(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	at := time.Now().UTC()
	if raw := c.QueryParam("at"); raw != "" {
		t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "at must be YYYY-MM-DD"})
		}
		at = t
	}
	b, err := h.uc.Breakdown(c.Request().Context(), loanID, at)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *LoanHandler) ListLoans(c echo.Context) error {
	chamaID, ok, err := pathID(c, "chama_id")
	if !ok {
		return err
	}
	ls, err := h.uc.ListByChama(c.Request().Context(), chamaID, domain.Status(c.QueryParam("status")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loans": ls})
}

type guaranteeReq struct {
	Approve *bool `json:"approve" validate:"required"`
}

// RespondGuarantee records the caller's answer as a guarantor.
func (h *LoanHandler) RespondGuarantee(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	var req guaranteeReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	g, err := h.uc.RespondGuarantee(c.Request().Context(), loanID, middleware.IdentityFrom(c).UserID, *req.Approve)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

type approveLoanReq struct {
	InterestRate *decimal.Decimal `json:"interest_rate" validate:"omitempty,gte=0,lte=100,dec2"`
}

func (h *LoanHandler) Approve(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	var req approveLoanReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Approve(c.Request().Context(), loan.ApproveInput{
		LoanID:       loanID,
		AdminID:      middleware.IdentityFrom(c).UserID,
		InterestRate: req.InterestRate,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Disburse(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	dto, err := h.uc.Disburse(c.Request().Context(), loanID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type loanPaymentReq struct {
	Amount decimal.Decimal `json:"amount"  validate:"gt=0,dec2"`
	Source string          `json:"source"  validate:"omitempty,oneof=cash savings"`
	PaidAt *time.Time      `json:"paid_at"`
}

func (h *LoanHandler) RecordPayment(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	var req loanPaymentReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	who := middleware.IdentityFrom(c)
	res, err := h.uc.RecordPayment(c.Request().Context(), loan.PaymentInput{
		LoanID:     loanID,
		Amount:     req.Amount,
		Source:     domain.PaymentSource(req.Source),
		PaidAt:     req.PaidAt,
		ActorID:    who.UserID,
		ActorAdmin: callerIsAdmin(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *LoanHandler) Cancel(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	who := middleware.IdentityFrom(c)
	dto, err := h.uc.Cancel(c.Request().Context(), loanID, who.UserID, callerIsAdmin(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) MarkDefaulted(c echo.Context) error {
	loanID, ok, err := pathID(c, "loan_id")
	if !ok {
		return err
	}
	dto, err := h.uc.MarkDefaulted(c.Request().Context(), loanID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

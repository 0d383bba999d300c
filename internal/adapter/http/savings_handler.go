package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"merry/internal/adapter/middleware"
	"merry/internal/domain/apperr"
	domain "merry/internal/domain/savings"
	"merry/internal/usecase/savings"
)

type SavingsHandler struct{ uc *savings.Usecase }

func NewSavingsHandler(uc *savings.Usecase) *SavingsHandler { return &SavingsHandler{uc: uc} }

// Statement serves /chamas/:chama_id/savings/:user_id. Members may only read
// their own statement; "me" resolves to the caller.
func (h *SavingsHandler) Statement(c echo.Context) error {
	chamaID, ok, err := pathID(c, "chama_id")
	if !ok {
		return err
	}
	userID, ok, err := h.subject(c)
	if !ok {
		return err
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil || limit < 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	st, err := h.uc.Statement(c.Request().Context(), userID, chamaID, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *SavingsHandler) Reconcile(c echo.Context) error {
	chamaID, ok, err := pathID(c, "chama_id")
	if !ok {
		return err
	}
	userID, ok, err := pathID(c, "user_id")
	if !ok {
		return err
	}
	rec, err := h.uc.Reconcile(c.Request().Context(), userID, chamaID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// movementReq.UserID defaults to the caller; only chama admins may name
// another member.
type movementReq struct {
	UserID string          `json:"user_id" validate:"omitempty,hex32"`
	Amount decimal.Decimal `json:"amount"  validate:"required,dec2"`
	Note   string          `json:"note"    validate:"max=1000"`
}

// Withdraw is member initiated: a member withdraws their own savings.
func (h *SavingsHandler) Withdraw(c echo.Context) error {
	return h.move(c, h.uc.Withdraw, false)
}

// Adjust posts a signed correction; note is required by the use case.
func (h *SavingsHandler) Adjust(c echo.Context) error {
	return h.move(c, h.uc.Adjust, true)
}

func (h *SavingsHandler) move(c echo.Context, fn movementFunc, needUser bool) error {
	chamaID, ok, err := pathID(c, "chama_id")
	if !ok {
		return err
	}
	var req movementReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	who := middleware.IdentityFrom(c)
	switch {
	case req.UserID == "" && needUser:
		return fail(c, apperr.Invalid("user_id is required"))
	case req.UserID == "":
		req.UserID = who.UserID
	case req.UserID != who.UserID && !callerIsAdmin(c):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "cannot move another member's savings"})
	}
	tx, err := fn(c.Request().Context(), savings.MovementInput{
		UserID:  req.UserID,
		ChamaID: chamaID,
		Amount:  req.Amount,
		Note:    req.Note,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, tx)
}

func (h *SavingsHandler) subject(c echo.Context) (string, bool, error) {
	who := middleware.IdentityFrom(c)
	if c.Param("user_id") == "me" {
		return who.UserID, true, nil
	}
	userID, ok, err := pathID(c, "user_id")
	if !ok {
		return "", false, err
	}
	if userID != who.UserID && !callerIsAdmin(c) {
		return "", false, c.JSON(http.StatusForbidden, ErrorResponse{Error: "cannot read another member's savings"})
	}
	return userID, true, nil
}

type movementFunc func(ctx context.Context, in savings.MovementInput) (*domain.Transaction, error)

package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"merry/internal/adapter/middleware"
	domain "merry/internal/domain/chama"
	"merry/internal/usecase/chama"
)

type ChamaHandler struct{ uc *chama.Usecase }

func NewChamaHandler(uc *chama.Usecase) *ChamaHandler { return &ChamaHandler{uc: uc} }

type createChamaReq struct {
	Name                string          `json:"name"                  validate:"required,max=255"`
	Type                string          `json:"type"                  validate:"required,oneof=savings merry_go_round hybrid"`
	DefaultInterestRate decimal.Decimal `json:"default_interest_rate" validate:"gte=0,lte=100,dec2"`
	DisplayName         string          `json:"display_name"          validate:"required,max=255"`
	Phone               string          `json:"phone"                 validate:"max=20"`
}

// CreateChama registers a chama; the caller becomes its first admin.
func (h *ChamaHandler) CreateChama(c echo.Context) error {
	var req createChamaReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), chama.CreateInput{
		Name:                req.Name,
		Type:                domain.Type(req.Type),
		DefaultInterestRate: req.DefaultInterestRate,
		CreatorUserID:       middleware.IdentityFrom(c).UserID,
		CreatorName:         req.DisplayName,
		CreatorPhone:        req.Phone,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ChamaHandler) GetChama(c echo.Context) error {
	chamaID, ok, err := pathID(c, "chama_id")
	if !ok {
		return err
	}
	dto, err := h.uc.Get(c.Request().Context(), chamaID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type addMemberReq struct {
	UserID      string `json:"user_id"      validate:"required,hex32"`
	DisplayName string `json:"display_name" validate:"required,max=255"`
	Phone       string `json:"phone"        validate:"max=20"`
	Role        string `json:"role"         validate:"omitempty,oneof=admin member"`
}

func (h *ChamaHandler) AddMember(c echo.Context) error {
	chamaID, ok, err := pathID(c, "chama_id")
	if !ok {
		return err
	}
	var req addMemberReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	m, err := h.uc.AddMember(c.Request().Context(), chama.MemberInput{
		ChamaID:     chamaID,
		UserID:      req.UserID,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Role:        domain.Role(req.Role),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

type memberStatusReq struct {
	Status string `json:"status" validate:"required"`
}

func (h *ChamaHandler) SetMemberStatus(c echo.Context) error {
	chamaID, ok, err := pathID(c, "chama_id")
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
	m, err := h.uc.SetMemberStatus(c.Request().Context(), chamaID, memberID, domain.MemberStatus(req.Status))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

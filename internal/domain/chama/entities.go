package chama

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeSavings      Type = "savings"
	TypeMerryGoRound Type = "merry_go_round"
	TypeHybrid       Type = "hybrid"
)

func (t Type) Valid() bool {
	switch t {
	case TypeSavings, TypeMerryGoRound, TypeHybrid:
		return true
	}
	return false
}

// RotatesPayouts: one member collects the pot each period.
func (t Type) RotatesPayouts() bool { return t == TypeMerryGoRound || t == TypeHybrid }

// CreditsSavings: confirmed contributions feed the member's savings account.
func (t Type) CreditsSavings() bool { return t == TypeSavings || t == TypeHybrid }

type Chama struct {
	ID                  string          `gorm:"primaryKey;size:32" json:"id"`
	Name                string          `gorm:"size:255;not null" json:"name"`
	Type                Type            `gorm:"size:20;not null" json:"type"`
	DefaultInterestRate decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"default_interest_rate"`
	CreatedBy           string          `gorm:"size:32" json:"created_by"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Chama) TableName() string { return "chamas" }

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
)

type Member struct {
	ID          string       `gorm:"primaryKey;size:32" json:"id"`
	ChamaID     string       `gorm:"size:32;not null;uniqueIndex:ux_chama_members_chama_user,priority:1" json:"chama_id"`
	UserID      string       `gorm:"size:32;not null;uniqueIndex:ux_chama_members_chama_user,priority:2;index" json:"user_id"`
	DisplayName string       `gorm:"size:255" json:"display_name"`
	Phone       string       `gorm:"size:32" json:"phone"`
	Role        Role         `gorm:"size:20;not null;default:'member'" json:"role"`
	Status      MemberStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Member) TableName() string { return "chama_members" }

// IsAdmin reports whether m may administer its chama.
func (m Member) IsAdmin() bool { return m.Role == RoleAdmin && m.Status == MemberActive }

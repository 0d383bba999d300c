package notification

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	ID        string            `gorm:"primaryKey;size:32" json:"id"`
	UserID    string            `gorm:"size:32;not null;index:idx_notifications_user_created,priority:1" json:"user_id"`
	ChamaID   string            `gorm:"size:32;index" json:"chama_id"`
	Type      string            `gorm:"size:50;not null" json:"type"`
	Title     string            `gorm:"size:255;not null" json:"title"`
	Message   string            `gorm:"type:text" json:"message"`
	Data      datatypes.JSONMap `json:"data"`
	ReadAt    *time.Time        `json:"read_at"`
	CreatedAt time.Time         `gorm:"autoCreateTime;index:idx_notifications_user_created,priority:2" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

type Repository interface {
	CreateBatch(ctx context.Context, ns []Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, id, userID string, at time.Time) error
}

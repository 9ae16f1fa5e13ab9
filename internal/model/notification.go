package model

import "github.com/google/uuid"

type NotificationType string

const (
	NotifOrder   NotificationType = "order"
	NotifMention NotificationType = "mention"
	NotifSystem  NotificationType = "system"
)

// Notification targets one user and optionally links to an order.
type Notification struct {
	BaseModel
	UserID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Title   string           `gorm:"type:varchar(255);not null" json:"title"`
	Message string           `gorm:"type:text" json:"message"`
	Type    NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	OrderID *string          `gorm:"type:varchar(20);index" json:"order_id,omitempty"`
	IsRead  bool             `gorm:"default:false" json:"is_read"`
}

func (Notification) TableName() string {
	return "notifications"
}

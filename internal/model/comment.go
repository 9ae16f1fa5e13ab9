package model

import "github.com/google/uuid"

// OrderComment belongs to one order; append-only.
type OrderComment struct {
	BaseModel
	OrderID    string    `gorm:"type:varchar(20);not null;index" json:"order_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Username   string    `gorm:"type:varchar(255)" json:"username"`
	UserAvatar string    `gorm:"type:text" json:"user_avatar,omitempty"`
	Text       string    `gorm:"type:text;not null" json:"text" validate:"required"`
}

func (OrderComment) TableName() string {
	return "order_comments"
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationApproval  NotificationType = "approval"
	NotificationRejection NotificationType = "rejection"
	NotificationReview    NotificationType = "review"
	NotificationSystem    NotificationType = "system"
	NotificationMention   NotificationType = "mention"
	NotificationComment   NotificationType = "comment"
)

type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      NotificationType `gorm:"size:20;not null" json:"notification_type"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	ContentID *uuid.UUID       `gorm:"type:uuid" json:"content_id,omitempty"`
	Read      bool             `gorm:"not null;default:false;index" json:"read"`
	CreatedAt time.Time        `gorm:"index" json:"created_at"`
	User      User             `gorm:"foreignKey:UserID" json:"-"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

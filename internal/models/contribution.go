package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContributionType string

const (
	ContributionCreate       ContributionType = "create"
	ContributionEdit         ContributionType = "edit"
	ContributionPublished    ContributionType = "published"
	ContributionEditApproved ContributionType = "edit_approved"
	ContributionRejected     ContributionType = "rejected"
	ContributionEditRejected ContributionType = "edit_rejected"
)

// Contribution is an append-only ledger entry. Rows are never updated, so
// there is no UpdatedAt.
type Contribution struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type         ContributionType `gorm:"size:30;not null;index" json:"contribution_type"`
	ContentID    *uuid.UUID       `gorm:"type:uuid;index" json:"content_id,omitempty"`
	ContentType  ContentType      `gorm:"size:20" json:"content_type,omitempty"`
	PointsEarned int              `gorm:"not null;default:0" json:"points_earned"`
	Approved     bool             `gorm:"not null;default:false" json:"approved"`
	ApproverID   *uuid.UUID       `gorm:"type:uuid" json:"approver_id,omitempty"`
	Notes        string           `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time        `gorm:"index" json:"created_at"`
}

func (c *Contribution) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (Contribution) TableName() string {
	return "contributions"
}

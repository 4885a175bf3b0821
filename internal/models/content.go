package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContentType string

const (
	ContentTypeArticle     ContentType = "article"
	ContentTypePersonality ContentType = "personality"
	ContentTypeCultural    ContentType = "cultural"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeArticle, ContentTypePersonality, ContentTypeCultural:
		return true
	}
	return false
}

// ReviewStatus is the lifecycle stage of a content item.
type ReviewStatus string

const (
	StatusDraft    ReviewStatus = "draft"
	StatusPending  ReviewStatus = "pending"
	StatusApproved ReviewStatus = "approved"
	StatusRejected ReviewStatus = "rejected"
	StatusFeatured ReviewStatus = "featured"
)

// Live reports whether items in this status may be published.
func (s ReviewStatus) Live() bool {
	return s == StatusApproved || s == StatusFeatured
}

// ProtectionLevel gates which roles may edit an item.
type ProtectionLevel string

const (
	ProtectionNone      ProtectionLevel = "unprotected"
	ProtectionSemi      ProtectionLevel = "semi_protected"
	ProtectionProtected ProtectionLevel = "protected"
	ProtectionFull      ProtectionLevel = "fully_protected"
)

func (l ProtectionLevel) Valid() bool {
	switch l {
	case ProtectionNone, ProtectionSemi, ProtectionProtected, ProtectionFull:
		return true
	}
	return false
}

// ContentItem unifies articles, personalities and cultural entries.
//
// Published implies PublishedAt is set and ReviewStatus is approved or
// featured. PublishedAt is set on first approval and never cleared.
type ContentItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContentType     ContentType     `gorm:"size:20;not null;index" json:"content_type"`
	Title           string          `gorm:"size:255;not null" json:"title"`
	Slug            string          `gorm:"size:280;not null;uniqueIndex" json:"slug"`
	Body            string          `gorm:"type:text" json:"body"`
	Excerpt         string          `gorm:"type:text" json:"excerpt"`
	MetaDescription string          `gorm:"size:160" json:"meta_description"`
	References      string          `gorm:"type:text" json:"references"`
	ReviewStatus    ReviewStatus    `gorm:"size:20;not null;default:'draft';index" json:"review_status"`
	ReviewNotes     string          `gorm:"type:text" json:"review_notes,omitempty"`
	ProtectionLevel ProtectionLevel `gorm:"size:20;not null;default:'unprotected'" json:"protection_level"`
	Published       bool            `gorm:"not null;default:false;index" json:"published"`
	PublishedAt     *time.Time      `json:"published_at"`
	AuthorID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"author_id"`
	LastEditedByID  *uuid.UUID      `gorm:"type:uuid" json:"last_edited_by_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Author          User            `gorm:"foreignKey:AuthorID" json:"-"`
}

func (c *ContentItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (ContentItem) TableName() string {
	return "content_items"
}

// PreviouslyApproved reports whether the item has ever been published.
func (c *ContentItem) PreviouslyApproved() bool {
	return c.PublishedAt != nil
}

// Credited returns the user an edit review outcome is attributed to: the
// last editor, falling back to the author.
func (c *ContentItem) Credited() uuid.UUID {
	if c.LastEditedByID != nil && *c.LastEditedByID != uuid.Nil {
		return *c.LastEditedByID
	}
	return c.AuthorID
}

// PendingEdit stages a proposed change to already-approved content while it
// awaits review. At most one exists per item; it is deleted once applied or
// discarded. PreviousEditorID holds the item's LastEditedByID from before
// staging and is restored if the edit is rejected.
type PendingEdit struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ContentID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"content_id"`
	EditorID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"editor_id"`
	PreviousEditorID *uuid.UUID     `gorm:"type:uuid" json:"previous_editor_id,omitempty"`
	Fields           datatypes.JSON `gorm:"type:jsonb;not null" json:"fields"`
	Comment          string         `gorm:"size:255" json:"comment"`
	CreatedAt        time.Time      `json:"created_at"`
}

func (e *PendingEdit) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// ContentWatch subscribes a user to review events on an item.
type ContentWatch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_watch_user_content,priority:1" json:"user_id"`
	ContentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_watch_user_content,priority:2;index" json:"content_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (w *ContentWatch) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

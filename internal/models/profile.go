package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a user's permission tier. Roles are ordered; see Rank.
type Role string

const (
	RoleViewer            Role = "viewer"
	RoleContributor       Role = "contributor"
	RoleAutoconfirmed     Role = "autoconfirmed"
	RoleExtendedConfirmed Role = "extended_confirmed"
	RoleReviewer          Role = "reviewer"
	RoleEditor            Role = "editor"
	RoleAdmin             Role = "admin"
)

var roleRanks = map[Role]int{
	RoleViewer:            0,
	RoleContributor:       1,
	RoleAutoconfirmed:     2,
	RoleExtendedConfirmed: 3,
	RoleReviewer:          4,
	RoleEditor:            5,
	RoleAdmin:             6,
}

// Rank returns the role's position on the ladder, or -1 for unknown roles.
func (r Role) Rank() int {
	if rank, ok := roleRanks[r]; ok {
		return rank
	}
	return -1
}

// AtLeast reports whether r ranks at or above other.
func (r Role) AtLeast(other Role) bool {
	return r.Rank() >= other.Rank() && r.Rank() >= 0
}

func (r Role) Valid() bool {
	return r.Rank() >= 0
}

// DisplayName is used in role change notifications.
func (r Role) DisplayName() string {
	switch r {
	case RoleViewer:
		return "Viewer"
	case RoleContributor:
		return "Contributor"
	case RoleAutoconfirmed:
		return "Autoconfirmed"
	case RoleExtendedConfirmed:
		return "Extended Confirmed"
	case RoleReviewer:
		return "Reviewer"
	case RoleEditor:
		return "Editor"
	case RoleAdmin:
		return "Administrator"
	}
	return string(r)
}

// UserProfile carries reputation and trust state for a user. The edit
// counters are a cache of the contribution ledger.
type UserProfile struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Role               Role      `gorm:"size:20;not null;default:'viewer'" json:"role"`
	Bio                string    `gorm:"type:text" json:"bio"`
	Location           string    `gorm:"size:100" json:"location"`
	ReputationPoints   int       `gorm:"not null;default:0" json:"reputation_points"`
	ContributionCount  int       `gorm:"not null;default:0" json:"contribution_count"`
	ApprovedEditCount  int       `gorm:"not null;default:0" json:"approved_edit_count"`
	RejectedEditCount  int       `gorm:"not null;default:0" json:"rejected_edit_count"`
	RevertCount        int       `gorm:"not null;default:0" json:"revert_count"`
	TrustScore         float64   `gorm:"not null;default:0" json:"trust_score"`
	AutoApproveEdits   bool      `gorm:"not null;default:false" json:"auto_approve_edits"`
	WatchNotifications bool      `gorm:"not null;default:true" json:"watch_notifications"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	User               User      `gorm:"foreignKey:UserID" json:"-"`
}

func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Role == "" {
		p.Role = RoleViewer
	}
	return nil
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

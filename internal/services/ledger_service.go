package services

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerService is the append-only contribution ledger. It has no update or
// delete path.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// LedgerEntry describes one scoring event.
type LedgerEntry struct {
	UserID     uuid.UUID
	Type       models.ContributionType
	Content    *models.ContentItem
	Points     int
	Approved   bool
	ApproverID *uuid.UUID
	Notes      string
}

// LedgerFilter narrows List and Count. Zero values mean "any".
type LedgerFilter struct {
	UserID   uuid.UUID
	Type     models.ContributionType
	Approved *bool
	Limit    int
	Offset   int
}

// Counters are the edit counters reconstructed from the ledger.
type Counters struct {
	Approved int
	Rejected int
	Reverts  int
}

// Record appends an entry within tx.
func (s *LedgerService) Record(tx *gorm.DB, e LedgerEntry) (*models.Contribution, error) {
	c := models.Contribution{
		UserID:       e.UserID,
		Type:         e.Type,
		PointsEarned: e.Points,
		Approved:     e.Approved,
		ApproverID:   e.ApproverID,
		Notes:        e.Notes,
	}
	if e.Content != nil {
		id := e.Content.ID
		c.ContentID = &id
		c.ContentType = e.Content.ContentType
	}
	if err := tx.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to record contribution: %w", err)
	}
	return &c, nil
}

func (s *LedgerService) scoped(ctx context.Context, f LedgerFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Contribution{})
	if f.UserID != uuid.Nil {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Approved != nil {
		q = q.Where("approved = ?", *f.Approved)
	}
	return q
}

// List returns matching entries, newest first.
func (s *LedgerService) List(ctx context.Context, f LedgerFilter) ([]models.Contribution, error) {
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var out []models.Contribution
	err := s.scoped(ctx, f).
		Order("created_at DESC").
		Limit(limit).
		Offset(f.Offset).
		Find(&out).Error
	return out, err
}

func (s *LedgerService) Count(ctx context.Context, f LedgerFilter) (int64, error) {
	var total int64
	err := s.scoped(ctx, f).Count(&total).Error
	return total, err
}

// Tally reconstructs a user's edit counters from the ledger.
func (s *LedgerService) Tally(ctx context.Context, userID uuid.UUID) (Counters, error) {
	return s.tally(s.db.WithContext(ctx), userID)
}

func (s *LedgerService) tally(tx *gorm.DB, userID uuid.UUID) (Counters, error) {
	var rows []struct {
		Type     models.ContributionType
		Approved bool
		N        int
	}
	err := tx.Model(&models.Contribution{}).
		Select("type, approved, COUNT(*) AS n").
		Where("user_id = ?", userID).
		Group("type, approved").
		Scan(&rows).Error
	if err != nil {
		return Counters{}, fmt.Errorf("failed to tally contributions: %w", err)
	}

	var c Counters
	for _, r := range rows {
		switch r.Type {
		case models.ContributionPublished, models.ContributionEditApproved:
			c.Approved += r.N
		case models.ContributionEdit:
			// Auto-approved edits are recorded as approved edit entries.
			if r.Approved {
				c.Approved += r.N
			}
		case models.ContributionRejected:
			c.Rejected += r.N
		case models.ContributionEditRejected:
			c.Rejected += r.N
			c.Reverts += r.N
		}
	}
	return c, nil
}

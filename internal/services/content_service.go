package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentService is the read side of the review workflow.
type ContentService struct {
	db       *gorm.DB
	profiles *ProfileService
}

func NewContentService(db *gorm.DB, profiles *ProfileService) *ContentService {
	return &ContentService{db: db, profiles: profiles}
}

// QueueEntry is a pending item with its staged edit, if it is an edit.
type QueueEntry struct {
	Item        models.ContentItem `json:"item"`
	PendingEdit *ContentFields     `json:"pending_edit,omitempty"`
	EditorID    *uuid.UUID         `json:"editor_id,omitempty"`
}

func (s *ContentService) find(ctx context.Context, query string, arg any) (*models.ContentItem, error) {
	var item models.ContentItem
	res := s.db.WithContext(ctx).Where(query, arg).Limit(1).Find(&item)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrContentNotFound
	}
	return &item, nil
}

// visible hides unpublished content from everyone but its author and
// reviewers.
func (s *ContentService) visible(ctx context.Context, item *models.ContentItem, viewerID uuid.UUID) error {
	if item.Published || (viewerID != uuid.Nil && viewerID == item.AuthorID) {
		return nil
	}
	if viewerID == uuid.Nil {
		return ErrContentNotFound
	}
	p, err := s.profiles.Get(ctx, viewerID)
	if errors.Is(err, ErrProfileNotFound) {
		return ErrContentNotFound
	}
	if err != nil {
		return err
	}
	if !CanReview(p.Role) {
		return ErrContentNotFound
	}
	return nil
}

// GetBySlug returns the item if viewerID may see it. uuid.Nil is an
// anonymous reader.
func (s *ContentService) GetBySlug(ctx context.Context, slug string, viewerID uuid.UUID) (*models.ContentItem, error) {
	item, err := s.find(ctx, "slug = ?", slug)
	if err != nil {
		return nil, err
	}
	if err := s.visible(ctx, item, viewerID); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ContentService) GetByID(ctx context.Context, id uuid.UUID) (*models.ContentItem, error) {
	return s.find(ctx, "id = ?", id)
}

// Queue lists pending items oldest first, so the longest-waiting review is
// at the top.
func (s *ContentService) Queue(ctx context.Context, contentType models.ContentType, limit, offset int) ([]QueueEntry, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.ContentItem{}).Where("review_status = ?", models.StatusPending)
	if contentType != "" {
		query = query.Where("content_type = ?", contentType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.ContentItem
	if err := query.Order("updated_at ASC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	if len(items) == 0 {
		return []QueueEntry{}, total, nil
	}

	ids := make([]uuid.UUID, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	var edits []models.PendingEdit
	if err := s.db.WithContext(ctx).Where("content_id IN ?", ids).Find(&edits).Error; err != nil {
		return nil, 0, err
	}
	byContent := make(map[uuid.UUID]models.PendingEdit, len(edits))
	for _, e := range edits {
		byContent[e.ContentID] = e
	}

	entries := make([]QueueEntry, len(items))
	for i, item := range items {
		entries[i].Item = item
		if e, ok := byContent[item.ID]; ok {
			var fields ContentFields
			if err := json.Unmarshal(e.Fields, &fields); err != nil {
				return nil, 0, err
			}
			editor := e.EditorID
			entries[i].PendingEdit = &fields
			entries[i].EditorID = &editor
		}
	}
	return entries, total, nil
}

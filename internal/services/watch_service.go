package services

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WatchService manages per-item subscriptions to review events.
type WatchService struct {
	db *gorm.DB
}

func NewWatchService(db *gorm.DB) *WatchService {
	return &WatchService{db: db}
}

// Watch is idempotent.
func (s *WatchService) Watch(ctx context.Context, userID, contentID uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.ContentItem{}).Where("id = ?", contentID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrContentNotFound
	}

	w := models.ContentWatch{UserID: userID, ContentID: contentID}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "content_id"}},
		DoNothing: true,
	}).Create(&w).Error
	if err != nil {
		return fmt.Errorf("failed to watch content: %w", err)
	}
	return nil
}

func (s *WatchService) Unwatch(ctx context.Context, userID, contentID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		Delete(&models.ContentWatch{}).Error
}

func (s *WatchService) IsWatching(ctx context.Context, userID, contentID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ContentWatch{}).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		Count(&count).Error
	return count > 0, err
}

// watchers returns the users watching contentID who still want watch
// notifications.
func (s *WatchService) watchers(tx *gorm.DB, contentID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := tx.Model(&models.ContentWatch{}).
		Joins("JOIN user_profiles ON user_profiles.user_id = content_watches.user_id").
		Where("content_watches.content_id = ? AND user_profiles.watch_notifications = ?", contentID, true).
		Order("content_watches.user_id").
		Pluck("content_watches.user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load watchers: %w", err)
	}
	return ids, nil
}

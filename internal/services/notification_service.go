package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationService creates notifications as side effects of review
// transitions and lets recipients read and dismiss them.
type NotificationService struct {
	db        *gorm.DB
	profiles  *ProfileService
	publisher Publisher
}

func NewNotificationService(db *gorm.DB, profiles *ProfileService, publisher Publisher) *NotificationService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &NotificationService{db: db, profiles: profiles, publisher: publisher}
}

// Notify creates a notification within tx. It returns ErrProfileNotFound when
// the recipient does not exist.
func (s *NotificationService) Notify(tx *gorm.DB, userID uuid.UUID, typ models.NotificationType, message string, contentID *uuid.UUID) (*models.Notification, error) {
	if _, err := s.profiles.getOrCreate(tx, userID, false); err != nil {
		return nil, err
	}

	n := models.Notification{
		UserID:    userID,
		Type:      typ,
		Message:   message,
		ContentID: contentID,
	}
	if err := tx.Omit("User").Create(&n).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return &n, nil
}

// notifySafe is the transition-side wrapper around Notify: a missing
// recipient is logged and skipped, anything else aborts the transition.
func (s *NotificationService) notifySafe(tx *gorm.DB, out *outbox, userID uuid.UUID, typ models.NotificationType, message string, contentID *uuid.UUID) error {
	n, err := s.Notify(tx, userID, typ, message, contentID)
	if errors.Is(err, ErrProfileNotFound) {
		notificationDropCount.WithLabelValues("profile_not_found").Inc()
		slog.Warn("notification skipped, recipient has no profile", "user_id", userID.String(), "type", string(typ))
		return nil
	}
	if err != nil {
		return err
	}
	out.add(n)
	return nil
}

// publish fans committed notifications out to the publisher. Failures are
// logged only; the notifications are already stored.
func (s *NotificationService) publish(ctx context.Context, out *outbox) {
	if out == nil {
		return
	}
	for i := range out.notifications {
		n := &out.notifications[i]
		if err := s.publisher.Publish(ctx, n); err != nil {
			notificationDropCount.WithLabelValues("publish_failed").Inc()
			slog.Error("failed to publish notification", "user_id", n.UserID.String(), "error", err)
		}
	}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&total).Error
	return total, err
}

// MarkRead marks one of the recipient's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

func (s *NotificationService) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

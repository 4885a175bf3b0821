package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileService resolves users to their reputation profiles with
// get-or-create semantics.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// GetOrCreate returns the user's profile, creating a viewer profile on first
// use. It fails with ErrProfileNotFound when the user does not exist.
func (s *ProfileService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	return s.getOrCreate(s.db.WithContext(ctx), userID, false)
}

// Get returns an existing profile without creating one.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	res := s.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).Limit(1).Find(&profile)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrProfileNotFound
	}
	return &profile, nil
}

// lockProfiles loads (creating if needed) and locks the profiles of the given
// users in ascending id order, so concurrent transitions always take profile
// locks in the same sequence. Users that do not exist are left out of the
// result rather than failing the transaction.
func (s *ProfileService) lockProfiles(tx *gorm.DB, userIDs ...uuid.UUID) (map[uuid.UUID]*models.UserProfile, error) {
	ids := make([]uuid.UUID, 0, len(userIDs))
	for _, id := range userIDs {
		if id != uuid.Nil {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	ids = slices.Compact(ids)

	out := make(map[uuid.UUID]*models.UserProfile, len(ids))
	for _, id := range ids {
		profile, err := s.getOrCreate(tx, id, true)
		if errors.Is(err, ErrProfileNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = profile
	}
	return out, nil
}

func (s *ProfileService) getOrCreate(tx *gorm.DB, userID uuid.UUID, lock bool) (*models.UserProfile, error) {
	// Find+RowsAffected instead of First: a missing row must not put a
	// PostgreSQL transaction into the aborted state.
	var user models.User
	res := tx.Where("id = ?", userID).Limit(1).Find(&user)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to load user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrProfileNotFound
	}

	load := func() (*models.UserProfile, bool, error) {
		q := tx
		if lock {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var profile models.UserProfile
		res := q.Where("user_id = ?", userID).Limit(1).Find(&profile)
		if res.Error != nil {
			return nil, false, fmt.Errorf("failed to load profile: %w", res.Error)
		}
		profile.User = user
		return &profile, res.RowsAffected > 0, nil
	}

	profile, found, err := load()
	if err != nil || found {
		return profile, err
	}

	created := models.UserProfile{
		UserID:             userID,
		Role:               models.RoleViewer,
		WatchNotifications: true,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&created).Error; err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	profile, found, err = load()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// saveProfile writes the profile's own columns; the preloaded User is never
// written back.
func saveProfile(tx *gorm.DB, profile *models.UserProfile) error {
	if err := tx.Omit(clause.Associations).Save(profile).Error; err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

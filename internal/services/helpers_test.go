package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu        sync.Mutex
	published []models.Notification
}

func (p *recordingPublisher) Publish(_ context.Context, n *models.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, *n)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

type testEnv struct {
	db            *gorm.DB
	publisher     *recordingPublisher
	profiles      *ProfileService
	ledger        *LedgerService
	notifications *NotificationService
	roles         *RoleService
	watches       *WatchService
	review        *ReviewService
	content       *ContentService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open("sqlite://:memory:", 1)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	env := &testEnv{db: db, publisher: &recordingPublisher{}}
	env.profiles = NewProfileService(db)
	env.ledger = NewLedgerService(db)
	env.notifications = NewNotificationService(db, env.profiles, env.publisher)
	env.roles = NewRoleService(db, env.profiles, env.ledger, env.notifications, config.DefaultTierPolicy())
	env.watches = NewWatchService(db)
	env.review = NewReviewService(db, env.profiles, env.ledger, env.notifications, env.roles, env.watches, config.DefaultPoints())
	env.content = NewContentService(db, env.profiles)
	return env
}

// newUser creates a user who joined age ago with a profile at role.
func (env *testEnv) newUser(t *testing.T, name string, role models.Role, age time.Duration) uuid.UUID {
	t.Helper()

	user := models.User{
		Username:  name,
		Email:     name + "@example.com",
		CreatedAt: time.Now().Add(-age),
	}
	require.NoError(t, env.db.Create(&user).Error)

	p, err := env.profiles.GetOrCreate(context.Background(), user.ID)
	require.NoError(t, err)
	if role != models.RoleViewer {
		p.Role = role
		require.NoError(t, saveProfile(env.db, p))
	}
	return user.ID
}

func (env *testEnv) profile(t *testing.T, userID uuid.UUID) *models.UserProfile {
	t.Helper()
	p, err := env.profiles.Get(context.Background(), userID)
	require.NoError(t, err)
	return p
}

func (env *testEnv) item(t *testing.T, id uuid.UUID) *models.ContentItem {
	t.Helper()
	item, err := env.content.GetByID(context.Background(), id)
	require.NoError(t, err)
	return item
}

func (env *testEnv) notificationsFor(t *testing.T, userID uuid.UUID) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, env.db.Where("user_id = ?", userID).Order("created_at").Find(&out).Error)
	return out
}

func (env *testEnv) contributionsFor(t *testing.T, userID uuid.UUID) []models.Contribution {
	t.Helper()
	var out []models.Contribution
	require.NoError(t, env.db.Where("user_id = ?", userID).Order("created_at").Find(&out).Error)
	return out
}

// pendingDraft creates an article by author and submits it for review.
func (env *testEnv) pendingDraft(t *testing.T, authorID uuid.UUID, title string) *models.ContentItem {
	t.Helper()
	ctx := context.Background()

	item, err := env.review.Create(ctx, authorID, NewContent{
		ContentType: models.ContentTypeArticle,
		Title:       title,
		Body:        "original body",
	})
	require.NoError(t, err)

	item, err = env.review.SubmitForReview(ctx, item.ID, authorID)
	require.NoError(t, err)
	return item
}

func strPtr(s string) *string {
	return &s
}

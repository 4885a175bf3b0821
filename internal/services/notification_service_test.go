package services

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyMissingProfile(t *testing.T) {
	assert := assert.New(t)
	env := setupTestEnv(t)

	_, err := env.notifications.Notify(env.db, uuid.New(), models.NotificationSystem, "hello", nil)
	assert.ErrorIs(err, ErrProfileNotFound)

	out := &outbox{}
	assert.NoError(env.notifications.notifySafe(env.db, out, uuid.New(), models.NotificationSystem, "hello", nil))
	assert.Empty(out.notifications)
}

func TestNotifyCreatesProfileOnDemand(t *testing.T) {
	assert := assert.New(t)
	env := setupTestEnv(t)

	user := models.User{Username: "fresh", Email: "fresh@example.com"}
	require.NoError(t, env.db.Create(&user).Error)

	n, err := env.notifications.Notify(env.db, user.ID, models.NotificationMention, "you were mentioned", nil)
	require.NoError(t, err)
	assert.False(n.Read)

	p := env.profile(t, user.ID)
	assert.Equal(models.RoleViewer, p.Role)
	assert.True(p.WatchNotifications)
}

func TestNotificationRecipientOperations(t *testing.T) {
	assert := assert.New(t)
	env := setupTestEnv(t)
	ctx := context.Background()

	owner := env.newUser(t, "ayse", models.RoleContributor, day)
	other := env.newUser(t, "mehmet", models.RoleContributor, day)

	var ids []uuid.UUID
	for _, msg := range []string{"one", "two", "three"} {
		n, err := env.notifications.Notify(env.db, owner, models.NotificationSystem, msg, nil)
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	unread, err := env.notifications.UnreadCount(ctx, owner)
	require.NoError(t, err)
	assert.EqualValues(3, unread)

	assert.ErrorIs(env.notifications.MarkRead(ctx, other, ids[0]), ErrNotificationNotFound)
	require.NoError(t, env.notifications.MarkRead(ctx, owner, ids[0]))

	list, total, err := env.notifications.List(ctx, owner, true, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(2, total)
	assert.Len(list, 2)

	assert.ErrorIs(env.notifications.Delete(ctx, other, ids[1]), ErrNotificationNotFound)
	require.NoError(t, env.notifications.Delete(ctx, owner, ids[1]))

	marked, err := env.notifications.MarkAllRead(ctx, owner)
	require.NoError(t, err)
	assert.EqualValues(1, marked)

	unread, err = env.notifications.UnreadCount(ctx, owner)
	require.NoError(t, err)
	assert.Zero(unread)

	_, total, err = env.notifications.List(ctx, owner, false, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(2, total)
}

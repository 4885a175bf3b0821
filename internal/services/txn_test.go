package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errBusy = sqlite3.Error{Code: sqlite3.ErrBusy}

func TestRunTransitionRetriesConflictOnce(t *testing.T) {
	assert := assert.New(t)
	env := setupTestEnv(t)
	ctx := context.Background()

	retries := transitionRetryCount.WithLabelValues("retry_once")
	before := testutil.ToFloat64(retries)

	calls := 0
	out, err := runTransition(ctx, env.db, "retry_once", func(tx *gorm.DB, out *outbox) error {
		calls++
		if calls == 1 {
			// Work from the failed attempt must not survive.
			require.NoError(t, tx.Create(&models.User{Username: "stale"}).Error)
			out.add(&models.Notification{Message: "stale"})
			out.roleChanged("promotion")
			return errBusy
		}
		return tx.Create(&models.User{Username: "fresh"}).Error
	})
	require.NoError(t, err)
	assert.Equal(2, calls)
	assert.Equal(before+1, testutil.ToFloat64(retries))
	assert.Empty(out.notifications)
	assert.Empty(out.roleChanges)

	var usernames []string
	require.NoError(t, env.db.Model(&models.User{}).Order("username").Pluck("username", &usernames).Error)
	assert.Equal([]string{"fresh"}, usernames)
}

func TestRunTransitionSecondConflictIsInvalidTransition(t *testing.T) {
	assert := assert.New(t)
	env := setupTestEnv(t)

	calls := 0
	out, err := runTransition(context.Background(), env.db, "retry_twice", func(tx *gorm.DB, out *outbox) error {
		calls++
		return errBusy
	})
	assert.ErrorIs(err, ErrInvalidTransition)
	assert.Nil(out)
	assert.Equal(2, calls)
}

func TestRunTransitionDoesNotRetryOtherErrors(t *testing.T) {
	assert := assert.New(t)
	env := setupTestEnv(t)
	boom := errors.New("boom")

	calls := 0
	_, err := runTransition(context.Background(), env.db, "no_retry", func(tx *gorm.DB, out *outbox) error {
		calls++
		return boom
	})
	assert.ErrorIs(err, boom)
	assert.NotErrorIs(err, ErrInvalidTransition)
	assert.Equal(1, calls)
}

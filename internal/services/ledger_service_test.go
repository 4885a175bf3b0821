package services

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerTallyAndFilters(t *testing.T) {
	assert := assert.New(t)
	env := setupTestEnv(t)
	ctx := context.Background()

	user := env.newUser(t, "ayse", models.RoleContributor, day)
	item := &models.ContentItem{ContentType: models.ContentTypeArticle, Title: "x", Slug: "x", AuthorID: user}
	require.NoError(t, env.db.Omit("Author").Create(item).Error)

	entries := []LedgerEntry{
		{UserID: user, Type: models.ContributionCreate, Content: item, Points: 10},
		{UserID: user, Type: models.ContributionPublished, Content: item, Points: 20, Approved: true},
		{UserID: user, Type: models.ContributionEdit, Content: item, Points: 5},
		{UserID: user, Type: models.ContributionEdit, Content: item, Points: 5, Approved: true},
		{UserID: user, Type: models.ContributionEditApproved, Content: item, Points: 20, Approved: true},
		{UserID: user, Type: models.ContributionRejected, Content: item},
		{UserID: user, Type: models.ContributionEditRejected, Content: item},
		{UserID: user, Type: models.ContributionEditRejected, Content: item},
	}
	for _, e := range entries {
		c, err := env.ledger.Record(env.db, e)
		require.NoError(t, err)
		assert.Equal(models.ContentTypeArticle, c.ContentType)
	}

	counters, err := env.ledger.Tally(ctx, user)
	require.NoError(t, err)
	assert.Equal(Counters{Approved: 3, Rejected: 3, Reverts: 2}, counters)

	total, err := env.ledger.Count(ctx, LedgerFilter{UserID: user})
	require.NoError(t, err)
	assert.EqualValues(8, total)

	approved := true
	list, err := env.ledger.List(ctx, LedgerFilter{UserID: user, Approved: &approved})
	require.NoError(t, err)
	assert.Len(list, 3)

	edits, err := env.ledger.List(ctx, LedgerFilter{UserID: user, Type: models.ContributionEdit, Limit: 1})
	require.NoError(t, err)
	assert.Len(edits, 1)
}

func TestLedgerTallyEmpty(t *testing.T) {
	env := setupTestEnv(t)
	user := env.newUser(t, "ayse", models.RoleViewer, day)

	counters, err := env.ledger.Tally(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, Counters{}, counters)
}

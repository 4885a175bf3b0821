package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBHandlerPersistsErrors(t *testing.T) {
	assert := assert.New(t)

	db, err := database.Open("sqlite://:memory:", 1)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	h := NewDBHandler(db, time.Hour)
	defer h.Stop()

	logger := slog.New(h).With("action", "approve")
	logger.Info("ignored")
	logger.Error("transition failed", "content_id", "c-1", "user_id", "u-1", "error", "boom", "attempt", 2)
	h.Flush()

	var logs []models.SystemLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Equal("ERROR", entry.Level)
	assert.Equal("transition failed", entry.Message)
	assert.Equal("approve", entry.Action)
	assert.Equal("boom", entry.Error)
	require.NotNil(t, entry.ContentID)
	assert.Equal("c-1", *entry.ContentID)
	require.NotNil(t, entry.UserID)
	assert.Equal("u-1", *entry.UserID)
	assert.JSONEq(`{"attempt": 2}`, string(entry.Extra))
}

func TestPruneSystemLogs(t *testing.T) {
	db, err := database.Open("sqlite://:memory:", 1)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	require.NoError(t, db.Create(&models.SystemLog{Timestamp: time.Now().Add(-48 * time.Hour), Level: "ERROR"}).Error)
	require.NoError(t, db.Create(&models.SystemLog{Timestamp: time.Now(), Level: "ERROR"}).Error)

	deleted, err := PruneSystemLogs(db, 24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}

func TestMultiHandlerFansOutByLevel(t *testing.T) {
	assert := assert.New(t)

	var info, errs bytes.Buffer
	multi := NewMultiHandler(
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	assert.False(multi.Enabled(context.Background(), slog.LevelDebug))

	logger := slog.New(multi).With("user_id", "u-1")
	logger.Info("content created")
	logger.Error("approve failed")

	assert.Contains(info.String(), "content created")
	assert.Contains(info.String(), "approve failed")
	assert.NotContains(errs.String(), "content created")
	assert.Contains(errs.String(), "user_id=u-1")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

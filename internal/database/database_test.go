package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSqliteAndMigrate(t *testing.T) {
	db, err := Open("sqlite://:memory:", 10)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	u := models.User{Username: "naga"}
	require.NoError(t, db.Create(&u).Error)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, err := Open("mysql://root@localhost/wiki", 1)
	assert.Error(t, err)
}

func TestIsConflict(t *testing.T) {
	assert := assert.New(t)

	assert.False(IsConflict(nil))
	assert.False(IsConflict(errors.New("boom")))

	assert.True(IsConflict(&pgconn.PgError{Code: "40001"}))
	assert.True(IsConflict(fmt.Errorf("approve: %w", &pgconn.PgError{Code: "40P01"})))
	assert.True(IsConflict(&pgconn.PgError{Code: "55P03"}))
	assert.False(IsConflict(&pgconn.PgError{Code: "23505"}))

	assert.True(IsConflict(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.True(IsConflict(sqlite3.Error{Code: sqlite3.ErrLocked}))
	assert.False(IsConflict(sqlite3.Error{Code: sqlite3.ErrConstraint}))
}

package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanEdit(t *testing.T) {
	assert := assert.New(t)

	assert.False(CanEdit(models.RoleViewer, models.ProtectionNone))
	assert.True(CanEdit(models.RoleContributor, models.ProtectionNone))

	assert.False(CanEdit(models.RoleContributor, models.ProtectionSemi))
	assert.True(CanEdit(models.RoleAutoconfirmed, models.ProtectionSemi))

	assert.False(CanEdit(models.RoleAutoconfirmed, models.ProtectionProtected))
	assert.True(CanEdit(models.RoleExtendedConfirmed, models.ProtectionProtected))
	assert.True(CanEdit(models.RoleReviewer, models.ProtectionProtected))

	assert.False(CanEdit(models.RoleEditor, models.ProtectionFull))
	assert.True(CanEdit(models.RoleAdmin, models.ProtectionFull))

	assert.False(CanEdit(models.RoleEditor, "bogus"))
	assert.False(CanEdit("bogus", models.ProtectionNone))
}

func TestCanReview(t *testing.T) {
	assert := assert.New(t)

	assert.False(CanReview(models.RoleExtendedConfirmed))
	assert.True(CanReview(models.RoleReviewer))
	assert.True(CanReview(models.RoleEditor))
	assert.True(CanReview(models.RoleAdmin))
}

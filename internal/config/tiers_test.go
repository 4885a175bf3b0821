package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTierPolicyOrdering(t *testing.T) {
	assert := assert.New(t)

	tiers := DefaultTierPolicy().Tiers()
	assert.Len(tiers, 2)
	assert.Equal(models.RoleAutoconfirmed, tiers[0].Role)
	assert.Equal(models.RoleExtendedConfirmed, tiers[1].Role)
	assert.Equal(500, tiers[1].MinApprovedEdits)
	assert.Equal(30, tiers[1].MinAccountAgeDays)
}

func TestLoadTierPolicyFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.json")
	body := `{
		"editor": {"min_approved_edits": 100, "min_trust_score": 7.5},
		"contributor": {"min_approved_edits": 1}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	p, err := LoadTierPolicy(path)
	require.NoError(t, err)

	tiers := p.Tiers()
	require.Len(t, tiers, 2)
	assert.Equal(t, models.RoleContributor, tiers[0].Role)
	assert.Equal(t, models.RoleEditor, tiers[1].Role)
	assert.Equal(t, 7.5, tiers[1].MinTrustScore)

	_, ok := p.Lookup(models.RoleAutoconfirmed)
	assert.False(t, ok)
}

func TestLoadTierPolicyRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.json")
	require.NoError(t, os.WriteFile(unknown, []byte(`{"overlord": {}}`), 0o600))
	_, err := LoadTierPolicy(unknown)
	assert.Error(t, err)

	negative := filepath.Join(dir, "negative.json")
	require.NoError(t, os.WriteFile(negative, []byte(`{"contributor": {"min_approved_edits": -1}}`), 0o600))
	_, err = LoadTierPolicy(negative)
	assert.Error(t, err)

	_, err = LoadTierPolicy(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLoadTierPolicyEmptyPathUsesDefaults(t *testing.T) {
	p, err := LoadTierPolicy("")
	require.NoError(t, err)
	assert.Len(t, p.Tiers(), 2)
}

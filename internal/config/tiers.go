package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
)

// TierCriteria are the thresholds a profile must meet to be promoted into a
// role tier automatically.
type TierCriteria struct {
	MinApprovedEdits  int     `json:"min_approved_edits"`
	MinTrustScore     float64 `json:"min_trust_score"`
	MinAccountAgeDays int     `json:"min_account_age_days"`
}

type Tier struct {
	Role models.Role
	TierCriteria
}

// TierPolicy is the ordered set of automatically reachable tiers, lowest
// rank first. Roles without a tier are only assigned explicitly.
type TierPolicy struct {
	tiers []Tier
}

// DefaultTierPolicy mirrors the autoconfirmed (4 days / 10 edits) and
// extended-confirmed (30 days / 500 edits) criteria. Reviewer, editor and
// admin are assigned by hand, and viewers become contributors on their
// first contribution.
func DefaultTierPolicy() *TierPolicy {
	p, _ := NewTierPolicy(map[models.Role]TierCriteria{
		models.RoleAutoconfirmed:     {MinApprovedEdits: 10, MinAccountAgeDays: 4},
		models.RoleExtendedConfirmed: {MinApprovedEdits: 500, MinAccountAgeDays: 30},
	})
	return p
}

func NewTierPolicy(tiers map[models.Role]TierCriteria) (*TierPolicy, error) {
	p := &TierPolicy{tiers: make([]Tier, 0, len(tiers))}
	for role, criteria := range tiers {
		if !role.Valid() {
			return nil, fmt.Errorf("unknown role tier %q", role)
		}
		if role == models.RoleViewer {
			continue
		}
		if criteria.MinApprovedEdits < 0 || criteria.MinAccountAgeDays < 0 || criteria.MinTrustScore < 0 || criteria.MinTrustScore > 10 {
			return nil, fmt.Errorf("invalid thresholds for role tier %q", role)
		}
		p.tiers = append(p.tiers, Tier{Role: role, TierCriteria: criteria})
	}
	sort.Slice(p.tiers, func(i, j int) bool {
		return p.tiers[i].Role.Rank() < p.tiers[j].Role.Rank()
	})
	return p, nil
}

// LoadTierPolicy reads a JSON object keyed by role name, e.g.
//
//	{"autoconfirmed": {"min_approved_edits": 10, "min_account_age_days": 4}}
//
// An empty path yields the default policy.
func LoadTierPolicy(path string) (*TierPolicy, error) {
	if path == "" {
		return DefaultTierPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read role tiers: %w", err)
	}

	var file map[models.Role]TierCriteria
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse role tiers: %w", err)
	}
	return NewTierPolicy(file)
}

// Tiers returns the configured tiers, lowest rank first.
func (p *TierPolicy) Tiers() []Tier {
	out := make([]Tier, len(p.tiers))
	copy(out, p.tiers)
	return out
}

func (p *TierPolicy) Lookup(role models.Role) (Tier, bool) {
	for _, t := range p.tiers {
		if t.Role == role {
			return t, true
		}
	}
	return Tier{}, false
}

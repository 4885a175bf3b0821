package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTrustScore(t *testing.T) {
	tests := []struct {
		name                        string
		approved, rejected, reverts int
		want                        float64
	}{
		{"no history", 0, 0, 0, 0.0},
		{"twenty clean edits", 20, 0, 0, 5.4},
		{"volume bonus caps at two", 100, 0, 0, 7.0},
		{"volume bonus stays capped", 1000, 0, 0, 7.0},
		{"half rejected with heavy reverts", 10, 10, 30, 0.7},
		{"only rejections", 0, 5, 0, 0.0},
		{"penalty never drives below zero", 0, 10, 100, 0.0},
		{"rounded to two decimals", 1, 2, 0, 1.69},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateTrustScore(tt.approved, tt.rejected, tt.reverts))
		})
	}
}

func TestCalculateTrustScoreBounds(t *testing.T) {
	assert := assert.New(t)

	for approved := 0; approved <= 600; approved += 37 {
		for rejected := 0; rejected <= 300; rejected += 29 {
			for reverts := 0; reverts <= 40; reverts += 7 {
				score := CalculateTrustScore(approved, rejected, reverts)
				assert.GreaterOrEqual(score, 0.0)
				assert.LessOrEqual(score, MaxTrustScore)
			}
		}
	}
}

func TestAutoApproveDecision(t *testing.T) {
	assert := assert.New(t)

	assert.True(AutoApproveDecision(7.0, 20, 0, false), "grant at thresholds")
	assert.False(AutoApproveDecision(7.0, 19, 0, false), "not enough approved edits")
	assert.False(AutoApproveDecision(6.9, 200, 0, false), "score below grant threshold")

	assert.True(AutoApproveDecision(6.0, 20, 0, true), "kept between thresholds")
	assert.False(AutoApproveDecision(6.0, 20, 0, false), "not granted between thresholds")

	assert.False(AutoApproveDecision(4.99, 20, 0, true), "revoked below five")
	assert.False(AutoApproveDecision(6.0, 20, 6, true), "revoked above five reverts")
	assert.True(AutoApproveDecision(6.0, 20, 5, true), "five reverts is tolerated")
}

package services

import "math"

const (
	MaxTrustScore = 10.0

	autoApproveMinScore    = 7.0
	autoApproveMinApproved = 20
	autoApproveRevokeScore = 5.0
	autoApproveMaxReverts  = 5
)

// CalculateTrustScore derives a user's trust score in [0, 10] from their
// edit history, rounded to two decimals.
//
// Up to 5 points come from the approval rate, up to 2 from volume (linear to
// 100 approved edits), and up to 2 are lost at 0.1 per revert.
func CalculateTrustScore(approved, rejected, reverts int) float64 {
	total := approved + rejected
	if total <= 0 {
		return 0.0
	}

	approvalRate := float64(approved) / float64(total)
	base := approvalRate * 5.0
	volumeBonus := math.Min(2.0, float64(approved)/50.0)
	revertPenalty := math.Min(2.0, float64(reverts)*0.1)

	score := math.Max(0.0, math.Min(MaxTrustScore, base+volumeBonus-revertPenalty))
	return math.Round(score*100) / 100
}

// AutoApproveDecision applies the auto-approve thresholds to a freshly
// computed score. Between the grant and revoke thresholds the current flag
// is kept.
func AutoApproveDecision(score float64, approved, reverts int, current bool) bool {
	if score >= autoApproveMinScore && approved >= autoApproveMinApproved {
		return true
	}
	if score < autoApproveRevokeScore || reverts > autoApproveMaxReverts {
		return false
	}
	return current
}

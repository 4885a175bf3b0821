package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// errDryRun rolls back a batch recompute transaction after evaluation.
var errDryRun = errors.New("dry run")

// RoleService keeps trust scores, auto-approval and automatic role tiers in
// line with a profile's edit counters.
type RoleService struct {
	db            *gorm.DB
	profiles      *ProfileService
	ledger        *LedgerService
	notifications *NotificationService
	tiers         *config.TierPolicy
	now           func() time.Time
}

func NewRoleService(db *gorm.DB, profiles *ProfileService, ledger *LedgerService, notifications *NotificationService, tiers *config.TierPolicy) *RoleService {
	if tiers == nil {
		tiers = config.DefaultTierPolicy()
	}
	return &RoleService{
		db:            db,
		profiles:      profiles,
		ledger:        ledger,
		notifications: notifications,
		tiers:         tiers,
		now:           time.Now,
	}
}

type roleDecision struct {
	trustScore  float64
	autoApprove bool
	role        models.Role
}

func accountAgeDays(joined, now time.Time) int {
	if joined.IsZero() || now.Before(joined) {
		return 0
	}
	return int(now.Sub(joined).Hours() / 24)
}

func meetsTier(c config.TierCriteria, approved int, trust float64, days int) bool {
	return approved >= c.MinApprovedEdits && trust >= c.MinTrustScore && days >= c.MinAccountAgeDays
}

func (s *RoleService) evaluate(p *models.UserProfile) roleDecision {
	score := CalculateTrustScore(p.ApprovedEditCount, p.RejectedEditCount, p.RevertCount)
	d := roleDecision{
		trustScore:  score,
		autoApprove: AutoApproveDecision(score, p.ApprovedEditCount, p.RevertCount, p.AutoApproveEdits),
		role:        p.Role,
	}

	days := accountAgeDays(p.User.CreatedAt, s.now())
	for _, tier := range s.tiers.Tiers() {
		if tier.Role.Rank() <= p.Role.Rank() {
			continue
		}
		if meetsTier(tier.TierCriteria, p.ApprovedEditCount, score, days) {
			d.role = tier.Role
		}
	}
	return d
}

// apply recomputes p within tx and saves it if anything changed. p must be
// locked by the caller and carry its User.
func (s *RoleService) apply(tx *gorm.DB, out *outbox, p *models.UserProfile) (bool, error) {
	d := s.evaluate(p)
	if d.trustScore == p.TrustScore && d.autoApprove == p.AutoApproveEdits && d.role == p.Role {
		return false, nil
	}

	oldRole := p.Role
	if d.autoApprove != p.AutoApproveEdits {
		kind := "auto_approve_revoked"
		if d.autoApprove {
			kind = "auto_approve_granted"
		}
		out.roleChanged(kind)
	}

	p.TrustScore = d.trustScore
	p.AutoApproveEdits = d.autoApprove
	p.Role = d.role
	if err := saveProfile(tx, p); err != nil {
		return false, err
	}

	if d.role != oldRole {
		out.roleChanged("promotion")
		slog.Info("user promoted", "user_id", p.UserID.String(), "from", string(oldRole), "to", string(d.role))
		msg := fmt.Sprintf("You have been promoted from %s to %s based on your contributions.", oldRole.DisplayName(), d.role.DisplayName())
		if err := s.notifications.notifySafe(tx, out, p.UserID, models.NotificationSystem, msg, nil); err != nil {
			return false, err
		}
	}
	return true, nil
}

// RecomputeRole recalculates the user's trust score, auto-approve flag and
// automatic role. Calling it again without new activity changes nothing.
func (s *RoleService) RecomputeRole(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile *models.UserProfile
	out, err := runTransition(ctx, s.db, "recompute_role", func(tx *gorm.DB, out *outbox) error {
		locked, err := s.profiles.lockProfiles(tx, userID)
		if err != nil {
			return err
		}
		p, ok := locked[userID]
		if !ok {
			return ErrProfileNotFound
		}
		profile = p
		_, err = s.apply(tx, out, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.publish(ctx, out)
	return profile, nil
}

// SetRole assigns a role explicitly. Only admins may do this, and it is the
// only way a role ever goes down.
func (s *RoleService) SetRole(ctx context.Context, actorID, userID uuid.UUID, role models.Role) (*models.UserProfile, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidField, role)
	}

	var profile *models.UserProfile
	out, err := runTransition(ctx, s.db, "set_role", func(tx *gorm.DB, out *outbox) error {
		locked, err := s.profiles.lockProfiles(tx, actorID, userID)
		if err != nil {
			return err
		}
		actor, ok := locked[actorID]
		if !ok || actor.Role != models.RoleAdmin {
			return ErrPermissionDenied
		}
		p, ok := locked[userID]
		if !ok {
			return ErrProfileNotFound
		}
		profile = p
		if p.Role == role {
			return nil
		}

		oldRole := p.Role
		p.Role = role
		if err := saveProfile(tx, p); err != nil {
			return err
		}
		out.roleChanged("manual")
		slog.Info("role changed", "user_id", userID.String(), "actor_id", actorID.String(), "from", string(oldRole), "to", string(role))

		msg := fmt.Sprintf("Your role has been changed from %s to %s by an administrator.", oldRole.DisplayName(), role.DisplayName())
		return s.notifications.notifySafe(tx, out, userID, models.NotificationSystem, msg, nil)
	})
	if err != nil {
		return nil, err
	}

	s.notifications.publish(ctx, out)
	return profile, nil
}

// EnsureAdmins gives every listed user the admin role. Users that do not
// exist yet are skipped.
func (s *RoleService) EnsureAdmins(ctx context.Context, userIDs []uuid.UUID) error {
	for _, id := range userIDs {
		_, err := runTransition(ctx, s.db, "ensure_admin", func(tx *gorm.DB, out *outbox) error {
			locked, err := s.profiles.lockProfiles(tx, id)
			if err != nil {
				return err
			}
			p, ok := locked[id]
			if !ok || p.Role == models.RoleAdmin {
				return nil
			}
			p.Role = models.RoleAdmin
			return saveProfile(tx, p)
		})
		if err != nil {
			return fmt.Errorf("failed to ensure admin %s: %w", id, err)
		}
	}
	return nil
}

// BatchOptions controls RecomputeAll.
type BatchOptions struct {
	// DryRun evaluates every profile but rolls each change back.
	DryRun bool
	// Reconcile rebuilds the edit counters from the contribution ledger
	// before recomputing.
	Reconcile bool
	PageSize  int
}

type BatchResult struct {
	Processed int `json:"processed"`
	Changed   int `json:"changed"`
	Failed    int `json:"failed"`
}

// RecomputeAll walks every profile in user id order. A failing profile is
// logged, reported and counted; it never stops the batch.
func (s *RoleService) RecomputeAll(ctx context.Context, opts BatchOptions) (BatchResult, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 200
	}

	var result BatchResult
	var cursor uuid.UUID
	for {
		var ids []uuid.UUID
		q := s.db.WithContext(ctx).Model(&models.UserProfile{}).Order("user_id").Limit(pageSize)
		if cursor != uuid.Nil {
			q = q.Where("user_id > ?", cursor)
		}
		if err := q.Pluck("user_id", &ids).Error; err != nil {
			return result, fmt.Errorf("failed to list profiles: %w", err)
		}
		if len(ids) == 0 {
			return result, nil
		}

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			changed, err := s.recomputeOne(ctx, id, opts)
			result.Processed++
			switch {
			case err != nil:
				result.Failed++
				roleSyncCount.WithLabelValues("failed").Inc()
				slog.Error("role recompute failed", "user_id", id.String(), "error", err)
				sentry.CaptureException(fmt.Errorf("recompute %s: %w", id, err))
			case changed:
				result.Changed++
				roleSyncCount.WithLabelValues("changed").Inc()
			default:
				roleSyncCount.WithLabelValues("unchanged").Inc()
			}
		}
		cursor = ids[len(ids)-1]
	}
}

func (s *RoleService) recomputeOne(ctx context.Context, userID uuid.UUID, opts BatchOptions) (bool, error) {
	changed := false
	out, err := runTransition(ctx, s.db, "rolesync", func(tx *gorm.DB, out *outbox) error {
		locked, err := s.profiles.lockProfiles(tx, userID)
		if err != nil {
			return err
		}
		p, ok := locked[userID]
		if !ok {
			return ErrProfileNotFound
		}

		if opts.Reconcile {
			c, err := s.ledger.tally(tx, userID)
			if err != nil {
				return err
			}
			if c.Approved != p.ApprovedEditCount || c.Rejected != p.RejectedEditCount || c.Reverts != p.RevertCount {
				p.ApprovedEditCount = c.Approved
				p.RejectedEditCount = c.Rejected
				p.RevertCount = c.Reverts
				if err := saveProfile(tx, p); err != nil {
					return err
				}
				changed = true
			}
		}

		applied, err := s.apply(tx, out, p)
		if err != nil {
			return err
		}
		changed = changed || applied
		if opts.DryRun {
			return errDryRun
		}
		return nil
	})
	if errors.Is(err, errDryRun) {
		return changed, nil
	}
	if err != nil {
		return false, err
	}

	s.notifications.publish(ctx, out)
	return changed, nil
}

// RoleProgress describes how far a user is from the next automatic tier.
type RoleProgress struct {
	NextRole    models.Role `json:"next_role,omitempty"`
	Percent     int         `json:"progress"`
	Ready       bool        `json:"ready"`
	EditsNeeded int         `json:"edits_needed"`
	DaysNeeded  int         `json:"days_needed"`
	TrustNeeded float64     `json:"trust_needed"`
}

// Progress reports progress towards the lowest configured tier above the
// profile's role. Each criterion weighs equally.
func (s *RoleService) Progress(p *models.UserProfile, joinedAt time.Time) RoleProgress {
	var next *config.Tier
	for _, tier := range s.tiers.Tiers() {
		if tier.Role.Rank() > p.Role.Rank() {
			next = &tier
			break
		}
	}
	if next == nil {
		return RoleProgress{Percent: 100}
	}

	days := accountAgeDays(joinedAt, s.now())
	prog := RoleProgress{
		NextRole:    next.Role,
		EditsNeeded: max(0, next.MinApprovedEdits-p.ApprovedEditCount),
		DaysNeeded:  max(0, next.MinAccountAgeDays-days),
		TrustNeeded: math.Max(0, math.Round((next.MinTrustScore-p.TrustScore)*100)/100),
	}
	prog.Ready = prog.EditsNeeded == 0 && prog.DaysNeeded == 0 && prog.TrustNeeded == 0

	var sum float64
	var n int
	ratio := func(have, need float64) {
		if need <= 0 {
			return
		}
		sum += math.Min(1, have/need)
		n++
	}
	ratio(float64(p.ApprovedEditCount), float64(next.MinApprovedEdits))
	ratio(float64(days), float64(next.MinAccountAgeDays))
	ratio(p.TrustScore, next.MinTrustScore)

	if n == 0 || prog.Ready {
		prog.Percent = 100
	} else {
		prog.Percent = int(sum / float64(n) * 100)
	}
	return prog
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// outbox collects notifications and role change events produced inside a
// transaction; they are published and counted only after it commits.
type outbox struct {
	notifications []models.Notification
	roleChanges   []string
}

func (o *outbox) add(n *models.Notification) {
	if n != nil {
		o.notifications = append(o.notifications, *n)
	}
}

func (o *outbox) roleChanged(kind string) {
	o.roleChanges = append(o.roleChanges, kind)
}

// runTransition executes fn in a single transaction. A lock conflict is
// retried once; a second conflict is reported as ErrInvalidTransition so the
// caller sees the same error as a failed precondition.
func runTransition(ctx context.Context, db *gorm.DB, name string, fn func(tx *gorm.DB, out *outbox) error) (*outbox, error) {
	var out *outbox
	attempt := func() error {
		out = &outbox{}
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(tx, out)
		})
	}

	err := attempt()
	if database.IsConflict(err) {
		transitionRetryCount.WithLabelValues(name).Inc()
		slog.Warn("transition conflict, retrying", "action", name, "error", err)
		err = attempt()
		if database.IsConflict(err) {
			err = fmt.Errorf("%w: %s conflicted with a concurrent update", ErrInvalidTransition, name)
		}
	}

	transitionCount.WithLabelValues(name, outcomeLabel(err)).Inc()
	if err != nil {
		return nil, err
	}
	for _, kind := range out.roleChanges {
		roleChangeCount.WithLabelValues(kind).Inc()
	}
	return out, nil
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrMissingFeedback):
		return "missing_feedback"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrContentNotFound):
		return "not_found"
	case errors.Is(err, errDryRun):
		return "dry_run"
	}
	return "error"
}

// lockItem loads a content item FOR UPDATE.
func lockItem(tx *gorm.DB, id uuid.UUID) (*models.ContentItem, error) {
	var item models.ContentItem
	res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&item)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to lock content: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrContentNotFound
	}
	return &item, nil
}

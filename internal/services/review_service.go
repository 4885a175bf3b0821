package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/regionwiki-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContentFields is a partial set of editable fields. Nil means unchanged.
type ContentFields struct {
	Title           *string `json:"title,omitempty"`
	Body            *string `json:"body,omitempty"`
	Excerpt         *string `json:"excerpt,omitempty"`
	MetaDescription *string `json:"meta_description,omitempty"`
	References      *string `json:"references,omitempty"`
}

// NewContent is the input to Create.
type NewContent struct {
	ContentType     models.ContentType
	Title           string
	Body            string
	Excerpt         string
	MetaDescription string
	References      string
}

// Limits match the column sizes and count characters, not bytes.
const (
	maxTitleLength           = 255
	maxMetaDescriptionLength = 160
)

func (f ContentFields) validate() error {
	if f.Title != nil {
		title := strings.TrimSpace(*f.Title)
		if title == "" {
			return fmt.Errorf("%w: title cannot be empty", ErrInvalidField)
		}
		if utf8.RuneCountInString(title) > maxTitleLength {
			return fmt.Errorf("%w: title is limited to %d characters", ErrInvalidField, maxTitleLength)
		}
	}
	if f.MetaDescription != nil && utf8.RuneCountInString(*f.MetaDescription) > maxMetaDescriptionLength {
		return fmt.Errorf("%w: meta description is limited to %d characters", ErrInvalidField, maxMetaDescriptionLength)
	}
	return nil
}

// diff keeps only the fields that differ from item.
func (f ContentFields) diff(item *models.ContentItem) ContentFields {
	pick := func(v *string, cur string) *string {
		if v == nil || *v == cur {
			return nil
		}
		return v
	}
	return ContentFields{
		Title:           pick(f.Title, item.Title),
		Body:            pick(f.Body, item.Body),
		Excerpt:         pick(f.Excerpt, item.Excerpt),
		MetaDescription: pick(f.MetaDescription, item.MetaDescription),
		References:      pick(f.References, item.References),
	}
}

func (f ContentFields) empty() bool {
	return f.Title == nil && f.Body == nil && f.Excerpt == nil && f.MetaDescription == nil && f.References == nil
}

func (f ContentFields) applyTo(item *models.ContentItem) {
	if f.Title != nil {
		item.Title = strings.TrimSpace(*f.Title)
	}
	if f.Body != nil {
		item.Body = *f.Body
	}
	if f.Excerpt != nil {
		item.Excerpt = *f.Excerpt
	}
	if f.MetaDescription != nil {
		item.MetaDescription = *f.MetaDescription
	}
	if f.References != nil {
		item.References = *f.References
	}
}

// ReviewService drives content through draft, pending, approved, rejected
// and featured. Every transition runs in one transaction that locks the item
// before any profile, and its side effects commit or roll back together.
type ReviewService struct {
	db            *gorm.DB
	profiles      *ProfileService
	ledger        *LedgerService
	notifications *NotificationService
	roles         *RoleService
	watches       *WatchService
	points        config.Points
	now           func() time.Time
}

func NewReviewService(db *gorm.DB, profiles *ProfileService, ledger *LedgerService, notifications *NotificationService, roles *RoleService, watches *WatchService, points config.Points) *ReviewService {
	return &ReviewService{
		db:            db,
		profiles:      profiles,
		ledger:        ledger,
		notifications: notifications,
		roles:         roles,
		watches:       watches,
		points:        points,
		now:           time.Now,
	}
}

func saveItem(tx *gorm.DB, item *models.ContentItem) error {
	if err := tx.Omit(clause.Associations).Save(item).Error; err != nil {
		return fmt.Errorf("failed to save content: %w", err)
	}
	return nil
}

func loadPendingEdit(tx *gorm.DB, contentID uuid.UUID) (*models.PendingEdit, error) {
	var edit models.PendingEdit
	res := tx.Where("content_id = ?", contentID).Limit(1).Find(&edit)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to load pending edit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &edit, nil
}

func contentLabel(item *models.ContentItem) string {
	return fmt.Sprintf("%s %q", item.ContentType, item.Title)
}

func withFeedback(msg, feedback string) string {
	if feedback == "" {
		return msg
	}
	return msg + " Feedback: " + feedback
}

// Create stores a new draft and credits the author. A viewer becomes a
// contributor on their first contribution.
func (s *ReviewService) Create(ctx context.Context, authorID uuid.UUID, in NewContent) (*models.ContentItem, error) {
	in.Title = strings.TrimSpace(in.Title)
	if !in.ContentType.Valid() {
		return nil, fmt.Errorf("%w: unknown content type %q", ErrInvalidField, in.ContentType)
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidField)
	}
	if err := (ContentFields{Title: &in.Title, MetaDescription: &in.MetaDescription}).validate(); err != nil {
		return nil, err
	}

	var item *models.ContentItem
	create := func() error {
		_, err := runTransition(ctx, s.db, "create", func(tx *gorm.DB, out *outbox) error {
			locked, err := s.profiles.lockProfiles(tx, authorID)
			if err != nil {
				return err
			}
			author, ok := locked[authorID]
			if !ok {
				return ErrProfileNotFound
			}
			if author.Role == models.RoleViewer {
				author.Role = models.RoleContributor
				out.roleChanged("first_contribution")
			}

			slug, err := uniqueSlug(tx, in.Title)
			if err != nil {
				return err
			}
			item = &models.ContentItem{
				ContentType:     in.ContentType,
				Title:           in.Title,
				Slug:            slug,
				Body:            in.Body,
				Excerpt:         in.Excerpt,
				MetaDescription: in.MetaDescription,
				References:      in.References,
				ReviewStatus:    models.StatusDraft,
				ProtectionLevel: models.ProtectionNone,
				AuthorID:        authorID,
			}
			if err := tx.Omit(clause.Associations).Create(item).Error; err != nil {
				return fmt.Errorf("failed to create content: %w", err)
			}

			if _, err := s.ledger.Record(tx, LedgerEntry{
				UserID:  authorID,
				Type:    models.ContributionCreate,
				Content: item,
				Points:  s.points.Create,
			}); err != nil {
				return err
			}

			author.ContributionCount++
			author.ReputationPoints += s.points.Create
			if err := saveProfile(tx, author); err != nil {
				return err
			}

			watch := models.ContentWatch{UserID: authorID, ContentID: item.ID}
			return tx.Create(&watch).Error
		})
		return err
	}

	err := create()
	// Two concurrent creates can pick the same free slug; the loser retries
	// and finds the next suffix.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = create()
	}
	if err != nil {
		return nil, err
	}

	slog.Info("content created", "content_id", item.ID.String(), "user_id", authorID.String(), "slug", item.Slug)
	return item, nil
}

// SubmitForReview moves a draft or rejected item to pending. Only the author
// or a reviewer may submit.
func (s *ReviewService) SubmitForReview(ctx context.Context, itemID, actorID uuid.UUID) (*models.ContentItem, error) {
	var item *models.ContentItem
	_, err := runTransition(ctx, s.db, "submit", func(tx *gorm.DB, out *outbox) error {
		var err error
		item, err = lockItem(tx, itemID)
		if err != nil {
			return err
		}
		if item.ReviewStatus != models.StatusDraft && item.ReviewStatus != models.StatusRejected {
			return fmt.Errorf("%w: cannot submit %s content", ErrInvalidTransition, item.ReviewStatus)
		}
		if actorID != item.AuthorID {
			actor, err := s.profiles.getOrCreate(tx, actorID, false)
			if errors.Is(err, ErrProfileNotFound) {
				return ErrPermissionDenied
			}
			if err != nil {
				return err
			}
			if !CanReview(actor.Role) {
				return ErrPermissionDenied
			}
		}

		item.ReviewStatus = models.StatusPending
		return saveItem(tx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// reviewer loads the acting reviewer and checks they may review.
func (s *ReviewService) reviewer(tx *gorm.DB, reviewerID uuid.UUID) error {
	p, err := s.profiles.getOrCreate(tx, reviewerID, false)
	if errors.Is(err, ErrProfileNotFound) {
		return ErrPermissionDenied
	}
	if err != nil {
		return err
	}
	if !CanReview(p.Role) {
		return ErrPermissionDenied
	}
	return nil
}

// Approve publishes a pending item. A first approval publishes the draft and
// credits the author; an edit approval applies the staged edit and credits
// its editor.
func (s *ReviewService) Approve(ctx context.Context, itemID, reviewerID uuid.UUID, feedback string) (*models.ContentItem, error) {
	feedback = strings.TrimSpace(feedback)

	var item *models.ContentItem
	out, err := runTransition(ctx, s.db, "approve", func(tx *gorm.DB, out *outbox) error {
		var err error
		item, err = lockItem(tx, itemID)
		if err != nil {
			return err
		}
		if item.ReviewStatus != models.StatusPending {
			return fmt.Errorf("%w: cannot approve %s content", ErrInvalidTransition, item.ReviewStatus)
		}
		if err := s.reviewer(tx, reviewerID); err != nil {
			return err
		}

		firstTime := !item.PreviouslyApproved()
		contribution := models.ContributionPublished
		credited := item.AuthorID
		var msg string
		if firstTime {
			now := s.now()
			item.PublishedAt = &now
			msg = fmt.Sprintf("Your %s has been approved and published.", contentLabel(item))
		} else {
			edit, err := loadPendingEdit(tx, item.ID)
			if err != nil {
				return err
			}
			if edit != nil {
				var fields ContentFields
				if err := json.Unmarshal(edit.Fields, &fields); err != nil {
					return fmt.Errorf("failed to decode pending edit: %w", err)
				}
				fields.applyTo(item)
				if err := tx.Delete(edit).Error; err != nil {
					return fmt.Errorf("failed to clear pending edit: %w", err)
				}
			}
			contribution = models.ContributionEditApproved
			credited = item.Credited()
			msg = fmt.Sprintf("Your edit to %s has been approved.", contentLabel(item))
		}

		item.ReviewStatus = models.StatusApproved
		item.Published = true
		item.ReviewNotes = feedback
		if err := saveItem(tx, item); err != nil {
			return err
		}

		if _, err := s.ledger.Record(tx, LedgerEntry{
			UserID:     credited,
			Type:       contribution,
			Content:    item,
			Points:     s.points.Published,
			Approved:   true,
			ApproverID: &reviewerID,
			Notes:      feedback,
		}); err != nil {
			return err
		}

		if err := s.creditProfile(tx, out, credited, func(p *models.UserProfile) {
			p.ReputationPoints += s.points.Published
			p.ContributionCount++
			p.ApprovedEditCount++
		}); err != nil {
			return err
		}

		if err := s.notifications.notifySafe(tx, out, credited, models.NotificationApproval, withFeedback(msg, feedback), &item.ID); err != nil {
			return err
		}
		return s.notifyWatchers(tx, out, item, credited, fmt.Sprintf("A change to %s you are watching has been approved.", contentLabel(item)))
	})
	if err != nil {
		return nil, err
	}

	s.notifications.publish(ctx, out)
	slog.Info("content approved", "content_id", item.ID.String(), "user_id", reviewerID.String())
	return item, nil
}

// Reject sends a pending item back. A first-time submission becomes
// rejected; a rejected edit is discarded and the item returns to its
// approved state, counting as a revert for the editor.
func (s *ReviewService) Reject(ctx context.Context, itemID, reviewerID uuid.UUID, feedback string) (*models.ContentItem, error) {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		transitionCount.WithLabelValues("reject", outcomeLabel(ErrMissingFeedback)).Inc()
		return nil, ErrMissingFeedback
	}

	var item *models.ContentItem
	out, err := runTransition(ctx, s.db, "reject", func(tx *gorm.DB, out *outbox) error {
		var err error
		item, err = lockItem(tx, itemID)
		if err != nil {
			return err
		}
		if item.ReviewStatus != models.StatusPending {
			return fmt.Errorf("%w: cannot reject %s content", ErrInvalidTransition, item.ReviewStatus)
		}
		if err := s.reviewer(tx, reviewerID); err != nil {
			return err
		}

		firstTime := !item.PreviouslyApproved()
		contribution := models.ContributionRejected
		credited := item.AuthorID
		var msg string
		if firstTime {
			item.ReviewStatus = models.StatusRejected
			msg = fmt.Sprintf("Your %s was not approved.", contentLabel(item))
		} else {
			edit, err := loadPendingEdit(tx, item.ID)
			if err != nil {
				return err
			}
			credited = item.Credited()
			if edit != nil {
				if err := tx.Delete(edit).Error; err != nil {
					return fmt.Errorf("failed to discard pending edit: %w", err)
				}
				// The live fields are the previous editor's again.
				item.LastEditedByID = edit.PreviousEditorID
			}
			item.ReviewStatus = models.StatusApproved
			item.Published = true
			contribution = models.ContributionEditRejected
			msg = fmt.Sprintf("Your edit to %s was not approved and has been reverted.", contentLabel(item))
		}
		item.ReviewNotes = feedback
		if err := saveItem(tx, item); err != nil {
			return err
		}

		if _, err := s.ledger.Record(tx, LedgerEntry{
			UserID:     credited,
			Type:       contribution,
			Content:    item,
			Approved:   false,
			ApproverID: &reviewerID,
			Notes:      feedback,
		}); err != nil {
			return err
		}

		if err := s.creditProfile(tx, out, credited, func(p *models.UserProfile) {
			p.RejectedEditCount++
			if !firstTime {
				p.RevertCount++
			}
		}); err != nil {
			return err
		}

		return s.notifications.notifySafe(tx, out, credited, models.NotificationRejection, withFeedback(msg, feedback), &item.ID)
	})
	if err != nil {
		return nil, err
	}

	s.notifications.publish(ctx, out)
	slog.Info("content rejected", "content_id", item.ID.String(), "user_id", reviewerID.String())
	return item, nil
}

// creditProfile locks the credited user's profile, applies update and
// recomputes their trust and role in the same transaction. A missing user
// is logged and skipped.
func (s *ReviewService) creditProfile(tx *gorm.DB, out *outbox, userID uuid.UUID, update func(p *models.UserProfile)) error {
	locked, err := s.profiles.lockProfiles(tx, userID)
	if err != nil {
		return err
	}
	p, ok := locked[userID]
	if !ok {
		slog.Warn("credited user has no profile", "user_id", userID.String())
		return nil
	}

	update(p)
	if err := saveProfile(tx, p); err != nil {
		return err
	}
	_, err = s.roles.apply(tx, out, p)
	return err
}

func (s *ReviewService) notifyWatchers(tx *gorm.DB, out *outbox, item *models.ContentItem, skip uuid.UUID, msg string) error {
	watchers, err := s.watches.watchers(tx, item.ID)
	if err != nil {
		return err
	}
	for _, id := range watchers {
		if id == skip {
			continue
		}
		if err := s.notifications.notifySafe(tx, out, id, models.NotificationReview, msg, &item.ID); err != nil {
			return err
		}
	}
	return nil
}

// Edit changes an item's fields. Pending items are locked against edits.
//
// By default the edit applies directly and the status is kept. With
// requestReview on an approved item, an editor with auto-approval still
// applies directly and the edit counts as approved; anyone else has the edit
// staged and the item goes back to pending until a reviewer decides.
func (s *ReviewService) Edit(ctx context.Context, itemID, editorID uuid.UUID, fields ContentFields, requestReview bool) (*models.ContentItem, error) {
	if err := fields.validate(); err != nil {
		return nil, err
	}

	var item *models.ContentItem
	out, err := runTransition(ctx, s.db, "edit", func(tx *gorm.DB, out *outbox) error {
		var err error
		item, err = lockItem(tx, itemID)
		if err != nil {
			return err
		}
		if item.ReviewStatus == models.StatusPending {
			return fmt.Errorf("%w: content is awaiting review", ErrInvalidTransition)
		}

		locked, err := s.profiles.lockProfiles(tx, editorID)
		if err != nil {
			return err
		}
		editor, ok := locked[editorID]
		if !ok {
			return ErrProfileNotFound
		}
		if !s.mayEdit(editor, item) {
			return ErrPermissionDenied
		}

		changes := fields.diff(item)
		if changes.empty() {
			return nil
		}

		staged := requestReview && item.ReviewStatus == models.StatusApproved && !editor.AutoApproveEdits
		autoApproved := requestReview && item.ReviewStatus == models.StatusApproved && editor.AutoApproveEdits

		if staged {
			payload, err := json.Marshal(changes)
			if err != nil {
				return err
			}
			if err := tx.Where("content_id = ?", item.ID).Delete(&models.PendingEdit{}).Error; err != nil {
				return fmt.Errorf("failed to clear pending edit: %w", err)
			}
			edit := models.PendingEdit{
				ContentID:        item.ID,
				EditorID:         editorID,
				PreviousEditorID: item.LastEditedByID,
				Fields:           datatypes.JSON(payload),
			}
			if err := tx.Create(&edit).Error; err != nil {
				return fmt.Errorf("failed to stage edit: %w", err)
			}
			item.ReviewStatus = models.StatusPending
			item.Published = false
		} else {
			changes.applyTo(item)
		}
		item.LastEditedByID = &editorID
		if err := saveItem(tx, item); err != nil {
			return err
		}

		if _, err := s.ledger.Record(tx, LedgerEntry{
			UserID:   editorID,
			Type:     models.ContributionEdit,
			Content:  item,
			Points:   s.points.Edit,
			Approved: autoApproved,
		}); err != nil {
			return err
		}

		editor.ContributionCount++
		editor.ReputationPoints += s.points.Edit
		if autoApproved {
			editor.ApprovedEditCount++
		}
		if err := saveProfile(tx, editor); err != nil {
			return err
		}
		if autoApproved {
			_, err = s.roles.apply(tx, out, editor)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.publish(ctx, out)
	return item, nil
}

// mayEdit applies the protection level. Drafts and rejected items belong to
// their author until published; editors may still fix them.
func (s *ReviewService) mayEdit(editor *models.UserProfile, item *models.ContentItem) bool {
	if item.ReviewStatus == models.StatusDraft || item.ReviewStatus == models.StatusRejected {
		if editor.UserID == item.AuthorID {
			return true
		}
		if !item.PreviouslyApproved() {
			return canModerate(editor.Role)
		}
	}
	return CanEdit(editor.Role, item.ProtectionLevel)
}

// Feature promotes an approved item to featured.
func (s *ReviewService) Feature(ctx context.Context, itemID, actorID uuid.UUID) (*models.ContentItem, error) {
	return s.moderate(ctx, "feature", itemID, actorID, func(tx *gorm.DB, out *outbox, item *models.ContentItem) error {
		if item.ReviewStatus != models.StatusApproved {
			return fmt.Errorf("%w: only approved content can be featured", ErrInvalidTransition)
		}
		item.ReviewStatus = models.StatusFeatured
		if err := saveItem(tx, item); err != nil {
			return err
		}
		msg := fmt.Sprintf("Your %s has been featured.", contentLabel(item))
		return s.notifications.notifySafe(tx, out, item.AuthorID, models.NotificationSystem, msg, &item.ID)
	})
}

func (s *ReviewService) Unfeature(ctx context.Context, itemID, actorID uuid.UUID) (*models.ContentItem, error) {
	return s.moderate(ctx, "unfeature", itemID, actorID, func(tx *gorm.DB, out *outbox, item *models.ContentItem) error {
		if item.ReviewStatus != models.StatusFeatured {
			return fmt.Errorf("%w: content is not featured", ErrInvalidTransition)
		}
		item.ReviewStatus = models.StatusApproved
		return saveItem(tx, item)
	})
}

func (s *ReviewService) SetProtection(ctx context.Context, itemID, actorID uuid.UUID, level models.ProtectionLevel) (*models.ContentItem, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("%w: unknown protection level %q", ErrInvalidField, level)
	}
	return s.moderate(ctx, "protect", itemID, actorID, func(tx *gorm.DB, out *outbox, item *models.ContentItem) error {
		if item.ProtectionLevel == level {
			return nil
		}
		item.ProtectionLevel = level
		slog.Info("protection changed", "content_id", item.ID.String(), "user_id", actorID.String(), "level", string(level))
		return saveItem(tx, item)
	})
}

// moderate runs an editor-only action on a locked item.
func (s *ReviewService) moderate(ctx context.Context, name string, itemID, actorID uuid.UUID, fn func(tx *gorm.DB, out *outbox, item *models.ContentItem) error) (*models.ContentItem, error) {
	var item *models.ContentItem
	out, err := runTransition(ctx, s.db, name, func(tx *gorm.DB, out *outbox) error {
		var err error
		item, err = lockItem(tx, itemID)
		if err != nil {
			return err
		}
		actor, err := s.profiles.getOrCreate(tx, actorID, false)
		if errors.Is(err, ErrProfileNotFound) {
			return ErrPermissionDenied
		}
		if err != nil {
			return err
		}
		if !canModerate(actor.Role) {
			return ErrPermissionDenied
		}
		return fn(tx, out, item)
	})
	if err != nil {
		return nil, err
	}

	s.notifications.publish(ctx, out)
	return item, nil
}

package services

import "errors"

var (
	// ErrInvalidTransition means the requested review transition is not legal
	// from the item's current state, including when a concurrent request
	// changed that state first.
	ErrInvalidTransition = errors.New("invalid review transition")
	ErrMissingFeedback   = errors.New("feedback is required when rejecting")
	// ErrProfileNotFound is swallowed at the notification and role-update
	// boundary; it never blocks a content transition.
	ErrProfileNotFound      = errors.New("user profile not found")
	ErrContentNotFound      = errors.New("content not found")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrInvalidField         = errors.New("invalid field")
	ErrNotificationNotFound = errors.New("notification not found")
)

package reviewer

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no reviewer matches the given handle.
var ErrNotFound = errors.New("reviewer not found")

type ReviewerRepository interface {
	// Upsert creates the reviewer on first sign-in and stamps LastSeenAt
	// on every later one.
	Upsert(ctx context.Context, r *Reviewer) error
	GetByReviewerID(ctx context.Context, reviewerID string) (*Reviewer, error)
	List(ctx context.Context, limit, offset int) ([]*Reviewer, int, error)
}

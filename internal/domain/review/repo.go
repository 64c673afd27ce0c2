package review

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no response exists for the given key.
var ErrNotFound = errors.New("response not found")

type ResponseRepository interface {
	// Upsert writes the response, replacing any earlier row for the same
	// (reviewer_id, case_id, step).
	Upsert(ctx context.Context, resp *Response) error
	GetByKey(ctx context.Context, reviewerID, caseID string, step int) (*Response, error)
	ListByReviewer(ctx context.Context, reviewerID string, limit, offset int) ([]*Response, int, error)
	// StepsByReviewer returns, per case, the set of steps the reviewer has
	// saved. Drives the progress/resume computation.
	StepsByReviewer(ctx context.Context, reviewerID string) (map[string]map[int]bool, error)
}

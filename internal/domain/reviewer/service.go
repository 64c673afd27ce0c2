package reviewer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/akireview/akireview/internal/platform/auth"
)

// Reviewer handles are short identifiers, not free text.
var handlePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{2,64}$`)

type Service struct {
	repo   ReviewerRepository
	secret []byte
	ttl    time.Duration
}

func NewService(repo ReviewerRepository, secret []byte, ttl time.Duration) *Service {
	return &Service{repo: repo, secret: secret, ttl: ttl}
}

// SignIn upserts the reviewer record and issues a session token carrying
// the reviewer role.
func (s *Service) SignIn(ctx context.Context, reviewerID, displayName string) (string, *Reviewer, error) {
	reviewerID = strings.TrimSpace(reviewerID)
	if !handlePattern.MatchString(reviewerID) {
		return "", nil, fmt.Errorf("reviewer_id must be 2-64 characters of letters, digits, dot, dash or underscore")
	}
	rev := &Reviewer{ReviewerID: reviewerID, DisplayName: strings.TrimSpace(displayName)}
	if err := s.repo.Upsert(ctx, rev); err != nil {
		return "", nil, fmt.Errorf("upsert reviewer: %w", err)
	}
	token, err := auth.IssueToken(s.secret, rev.ReviewerID, rev.DisplayName, []string{"reviewer"}, s.ttl)
	if err != nil {
		return "", nil, err
	}
	return token, rev, nil
}

func (s *Service) GetReviewer(ctx context.Context, reviewerID string) (*Reviewer, error) {
	return s.repo.GetByReviewerID(ctx, reviewerID)
}

func (s *Service) ListReviewers(ctx context.Context, limit, offset int) ([]*Reviewer, int, error) {
	return s.repo.List(ctx, limit, offset)
}

package review

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/akireview/akireview/internal/platform/retry"
)

// retryingRepo decorates a ResponseRepository with bounded retries for
// transient store failures. Validation and not-found errors pass
// through untouched.
type retryingRepo struct {
	inner  ResponseRepository
	policy retry.Policy
}

func NewRetryingRepo(inner ResponseRepository, policy retry.Policy) ResponseRepository {
	policy.RetryIf = Transient
	return &retryingRepo{inner: inner, policy: policy}
}

// Transient reports whether a store error is worth retrying: connection
// drops, serialization failures and deadlocks. Everything else,
// constraint violations included, fails fast.
func Transient(err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"): // connection exception
			return true
		case pgErr.Code == "40001" || pgErr.Code == "40P01": // serialization, deadlock
			return true
		case pgErr.Code == "57P03": // cannot_connect_now
			return true
		}
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}

func (r *retryingRepo) Upsert(ctx context.Context, resp *Response) error {
	return retry.Do(ctx, r.policy, func() error {
		return r.inner.Upsert(ctx, resp)
	})
}

func (r *retryingRepo) GetByKey(ctx context.Context, reviewerID, caseID string, step int) (*Response, error) {
	return retry.Get(ctx, r.policy, func() (*Response, error) {
		return r.inner.GetByKey(ctx, reviewerID, caseID, step)
	})
}

func (r *retryingRepo) ListByReviewer(ctx context.Context, reviewerID string, limit, offset int) ([]*Response, int, error) {
	type page struct {
		items []*Response
		total int
	}
	p, err := retry.Get(ctx, r.policy, func() (page, error) {
		items, total, err := r.inner.ListByReviewer(ctx, reviewerID, limit, offset)
		return page{items: items, total: total}, err
	})
	return p.items, p.total, err
}

func (r *retryingRepo) StepsByReviewer(ctx context.Context, reviewerID string) (map[string]map[int]bool, error) {
	return retry.Get(ctx, r.policy, func() (map[string]map[int]bool, error) {
		return r.inner.StepsByReviewer(ctx, reviewerID)
	})
}

package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/akireview/akireview/internal/platform/retry"
)

func TestTransient_Classification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not found", ErrNotFound, false},
		{"wrapped not found", fmt.Errorf("load: %w", ErrNotFound), false},
		{"connection exception", &pgconn.PgError{Code: "08006"}, true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"cannot connect now", &pgconn.PgError{Code: "57P03"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"plain error", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Transient(tc.err); got != tc.want {
				t.Errorf("Transient(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

// flakyRepo fails the first n calls with the given error, then delegates.
type flakyRepo struct {
	ResponseRepository
	failures int
	err      error
	calls    int
}

func (f *flakyRepo) Upsert(ctx context.Context, resp *Response) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return f.ResponseRepository.Upsert(ctx, resp)
}

func fastPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:   4,
		BaseDelay:     time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2,
	}
}

func TestRetryingRepo_RetriesTransient(t *testing.T) {
	flaky := &flakyRepo{
		ResponseRepository: newMockResponseRepo(),
		failures:           2,
		err:                &pgconn.PgError{Code: "08006"},
	}
	repo := NewRetryingRepo(flaky, fastPolicy())

	err := repo.Upsert(context.Background(), &Response{ReviewerID: "rev-1", CaseID: "case_001", Step: 1})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if flaky.calls != 3 {
		t.Errorf("expected 3 calls, got %d", flaky.calls)
	}
}

func TestRetryingRepo_DoesNotRetryPermanent(t *testing.T) {
	flaky := &flakyRepo{
		ResponseRepository: newMockResponseRepo(),
		failures:           5,
		err:                &pgconn.PgError{Code: "23505"},
	}
	repo := NewRetryingRepo(flaky, fastPolicy())

	err := repo.Upsert(context.Background(), &Response{ReviewerID: "rev-1", CaseID: "case_001", Step: 1})
	if err == nil {
		t.Fatal("expected error")
	}
	if flaky.calls != 1 {
		t.Errorf("expected single call for permanent error, got %d", flaky.calls)
	}
}

func TestRetryingRepo_ExhaustsAttempts(t *testing.T) {
	flaky := &flakyRepo{
		ResponseRepository: newMockResponseRepo(),
		failures:           100,
		err:                &pgconn.PgError{Code: "08006"},
	}
	repo := NewRetryingRepo(flaky, fastPolicy())

	err := repo.Upsert(context.Background(), &Response{ReviewerID: "rev-1", CaseID: "case_001", Step: 1})
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Fatalf("expected last store error to surface, got %v", err)
	}
	if flaky.calls != 4 {
		t.Errorf("expected 4 attempts, got %d", flaky.calls)
	}
}

func TestRetryingRepo_NotFoundPassesThrough(t *testing.T) {
	repo := NewRetryingRepo(newMockResponseRepo(), fastPolicy())
	_, err := repo.GetByKey(context.Background(), "rev-1", "case_001", 1)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

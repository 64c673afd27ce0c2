package reviewer

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akireview/akireview/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type reviewerRepoPG struct{ pool *pgxpool.Pool }

func NewReviewerRepoPG(pool *pgxpool.Pool) ReviewerRepository {
	return &reviewerRepoPG{pool: pool}
}

func (r *reviewerRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const revCols = `id, reviewer_id, display_name, created_at, last_seen_at`

func (r *reviewerRepoPG) scanRow(row pgx.Row) (*Reviewer, error) {
	var rev Reviewer
	err := row.Scan(&rev.ID, &rev.ReviewerID, &rev.DisplayName, &rev.CreatedAt, &rev.LastSeenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *reviewerRepoPG) Upsert(ctx context.Context, rev *Reviewer) error {
	if rev.ID == uuid.Nil {
		rev.ID = uuid.New()
	}
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO reviewers (id, reviewer_id, display_name, last_seen_at)
		VALUES ($1,$2,$3,NOW())
		ON CONFLICT (reviewer_id) DO UPDATE SET
			display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), reviewers.display_name),
			last_seen_at = NOW()
		RETURNING `+revCols,
		rev.ID, rev.ReviewerID, rev.DisplayName)
	stored, err := r.scanRow(row)
	if err != nil {
		return err
	}
	*rev = *stored
	return nil
}

func (r *reviewerRepoPG) GetByReviewerID(ctx context.Context, reviewerID string) (*Reviewer, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx,
		`SELECT `+revCols+` FROM reviewers WHERE reviewer_id = $1`, reviewerID))
}

func (r *reviewerRepoPG) List(ctx context.Context, limit, offset int) ([]*Reviewer, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM reviewers`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+revCols+` FROM reviewers ORDER BY created_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Reviewer
	for rows.Next() {
		rev, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rev)
	}
	return items, total, rows.Err()
}

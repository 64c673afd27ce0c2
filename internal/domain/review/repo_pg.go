package review

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

type responseRepoPG struct{ pool *pgxpool.Pool }

func NewResponseRepoPG(pool *pgxpool.Pool) ResponseRepository {
	return &responseRepoPG{pool: pool}
}

func (r *responseRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const respCols = `id, recorded_at, reviewer_id, case_id, step, aki, highlight_html,
	rationale, confidence, reasoning, aki_etiology, aki_stage, aki_onset_explanation,
	created_at`

func (r *responseRepoPG) scanRow(row pgx.Row) (*Response, error) {
	var resp Response
	err := row.Scan(&resp.ID, &resp.RecordedAt, &resp.ReviewerID, &resp.CaseID, &resp.Step,
		&resp.AKI, &resp.HighlightHTML, &resp.Rationale, &resp.Confidence, &resp.Reasoning,
		&resp.Etiology, &resp.Stage, &resp.OnsetExplanation, &resp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *responseRepoPG) Upsert(ctx context.Context, resp *Response) error {
	if resp.ID == uuid.Nil {
		resp.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO responses (id, recorded_at, reviewer_id, case_id, step, aki,
			highlight_html, rationale, confidence, reasoning,
			aki_etiology, aki_stage, aki_onset_explanation)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (reviewer_id, case_id, step) DO UPDATE SET
			recorded_at = EXCLUDED.recorded_at,
			aki = EXCLUDED.aki,
			highlight_html = EXCLUDED.highlight_html,
			rationale = EXCLUDED.rationale,
			confidence = EXCLUDED.confidence,
			reasoning = EXCLUDED.reasoning,
			aki_etiology = EXCLUDED.aki_etiology,
			aki_stage = EXCLUDED.aki_stage,
			aki_onset_explanation = EXCLUDED.aki_onset_explanation`,
		resp.ID, resp.RecordedAt, resp.ReviewerID, resp.CaseID, resp.Step, resp.AKI,
		resp.HighlightHTML, resp.Rationale, resp.Confidence, resp.Reasoning,
		resp.Etiology, resp.Stage, resp.OnsetExplanation)
	return err
}

func (r *responseRepoPG) GetByKey(ctx context.Context, reviewerID, caseID string, step int) (*Response, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx,
		`SELECT `+respCols+` FROM responses WHERE reviewer_id = $1 AND case_id = $2 AND step = $3`,
		reviewerID, caseID, step))
}

func (r *responseRepoPG) ListByReviewer(ctx context.Context, reviewerID string, limit, offset int) ([]*Response, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM responses WHERE reviewer_id = $1`, reviewerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+respCols+` FROM responses WHERE reviewer_id = $1
		 ORDER BY recorded_at DESC LIMIT $2 OFFSET $3`, reviewerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Response
	for rows.Next() {
		resp, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, resp)
	}
	return items, total, rows.Err()
}

func (r *responseRepoPG) StepsByReviewer(ctx context.Context, reviewerID string) (map[string]map[int]bool, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT case_id, step FROM responses WHERE reviewer_id = $1`, reviewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	steps := make(map[string]map[int]bool)
	for rows.Next() {
		var caseID string
		var step int
		if err := rows.Scan(&caseID, &step); err != nil {
			return nil, err
		}
		if steps[caseID] == nil {
			steps[caseID] = make(map[int]bool)
		}
		steps[caseID][step] = true
	}
	return steps, rows.Err()
}

package admission

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

type admissionRepoPG struct{ pool *pgxpool.Pool }

func NewAdmissionRepoPG(pool *pgxpool.Pool) AdmissionRepository {
	return &admissionRepoPG{pool: pool}
}

func (r *admissionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const admCols = `id, case_id, title, hadm_id, summary_step1, summary_step2,
	weight_kg, admit_time, position, created_at, updated_at`

func (r *admissionRepoPG) scanRow(row pgx.Row) (*Admission, error) {
	var a Admission
	err := row.Scan(&a.ID, &a.CaseID, &a.Title, &a.HadmID, &a.SummaryStep1, &a.SummaryStep2,
		&a.WeightKg, &a.AdmitTime, &a.Position, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *admissionRepoPG) Create(ctx context.Context, a *Admission) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO admissions (id, case_id, title, hadm_id, summary_step1, summary_step2,
			weight_kg, admit_time, position)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.CaseID, a.Title, a.HadmID, a.SummaryStep1, a.SummaryStep2,
		a.WeightKg, a.AdmitTime, a.Position)
	return err
}

func (r *admissionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+admCols+` FROM admissions WHERE id = $1`, id))
}

func (r *admissionRepoPG) GetByCaseID(ctx context.Context, caseID string) (*Admission, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+admCols+` FROM admissions WHERE case_id = $1`, caseID))
}

func (r *admissionRepoPG) Update(ctx context.Context, a *Admission) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE admissions SET title=$2, hadm_id=$3, summary_step1=$4, summary_step2=$5,
			weight_kg=$6, admit_time=$7, position=$8, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Title, a.HadmID, a.SummaryStep1, a.SummaryStep2,
		a.WeightKg, a.AdmitTime, a.Position)
	return err
}

func (r *admissionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM admissions WHERE id = $1`, id)
	return err
}

func (r *admissionRepoPG) List(ctx context.Context, limit, offset int) ([]*Admission, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM admissions`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+admCols+` FROM admissions ORDER BY position, created_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *admissionRepoPG) ListAll(ctx context.Context) ([]*Admission, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+admCols+` FROM admissions ORDER BY position, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *admissionRepoPG) collect(rows pgx.Rows) ([]*Admission, error) {
	var items []*Admission
	for rows.Next() {
		a, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

package labs

import (
	"context"

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
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type labRepoPG struct{ pool *pgxpool.Pool }

func NewLabRepoPG(pool *pgxpool.Pool) LabRepository {
	return &labRepoPG{pool: pool}
}

func (r *labRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const labCols = `id, case_id, timestamp, kind, value, unit, created_at`

const labInsert = `
	INSERT INTO lab_events (id, case_id, timestamp, kind, value, unit)
	VALUES ($1,$2,$3,$4,$5,$6)`

func (r *labRepoPG) Create(ctx context.Context, ev *LabEvent) error {
	ev.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, labInsert,
		ev.ID, ev.CaseID, ev.Timestamp, ev.Kind, ev.Value, ev.Unit)
	return err
}

func (r *labRepoPG) BulkCreate(ctx context.Context, events []*LabEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, ev := range events {
		ev.ID = uuid.New()
		batch.Queue(labInsert, ev.ID, ev.CaseID, ev.Timestamp, ev.Kind, ev.Value, ev.Unit)
	}
	return r.conn(ctx).SendBatch(ctx, batch).Close()
}

func (r *labRepoPG) ListByCase(ctx context.Context, caseID string) ([]*LabEvent, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+labCols+` FROM lab_events WHERE case_id = $1 ORDER BY timestamp`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []*LabEvent
	for rows.Next() {
		var ev LabEvent
		if err := rows.Scan(&ev.ID, &ev.CaseID, &ev.Timestamp, &ev.Kind,
			&ev.Value, &ev.Unit, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

func (r *labRepoPG) DeleteByCase(ctx context.Context, caseID string) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM lab_events WHERE case_id = $1`, caseID)
	return err
}

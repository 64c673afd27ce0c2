package labs

import "context"

type LabRepository interface {
	Create(ctx context.Context, ev *LabEvent) error
	BulkCreate(ctx context.Context, events []*LabEvent) error
	ListByCase(ctx context.Context, caseID string) ([]*LabEvent, error)
	DeleteByCase(ctx context.Context, caseID string) error
}

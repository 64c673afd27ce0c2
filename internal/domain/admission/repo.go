package admission

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no admission matches the given key.
var ErrNotFound = errors.New("admission not found")

type AdmissionRepository interface {
	Create(ctx context.Context, a *Admission) error
	GetByID(ctx context.Context, id uuid.UUID) (*Admission, error)
	GetByCaseID(ctx context.Context, caseID string) (*Admission, error)
	Update(ctx context.Context, a *Admission) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Admission, int, error)
	ListAll(ctx context.Context) ([]*Admission, error)
}

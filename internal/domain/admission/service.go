package admission

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo AdmissionRepository
}

func NewService(repo AdmissionRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateAdmission(ctx context.Context, a *Admission) error {
	if a.CaseID == "" {
		return fmt.Errorf("case_id is required")
	}
	if a.SummaryStep1 == "" {
		return fmt.Errorf("summary_step1 is required")
	}
	if a.Title == "" {
		a.Title = a.CaseID
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) GetAdmission(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByCaseID(ctx context.Context, caseID string) (*Admission, error) {
	return s.repo.GetByCaseID(ctx, caseID)
}

// SummaryForCase resolves the narrative text a reviewer should see for a
// case at the given step.
func (s *Service) SummaryForCase(ctx context.Context, caseID string, step int) (string, error) {
	if step != 1 && step != 2 {
		return "", fmt.Errorf("step must be 1 or 2")
	}
	a, err := s.repo.GetByCaseID(ctx, caseID)
	if err != nil {
		return "", err
	}
	return a.SummaryForStep(step), nil
}

func (s *Service) UpdateAdmission(ctx context.Context, a *Admission) error {
	if a.SummaryStep1 == "" {
		return fmt.Errorf("summary_step1 is required")
	}
	return s.repo.Update(ctx, a)
}

func (s *Service) DeleteAdmission(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListAdmissions(ctx context.Context, limit, offset int) ([]*Admission, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// ListAllOrdered returns every case in review order. The review flow
// walks this list to compute a reviewer's resume position.
func (s *Service) ListAllOrdered(ctx context.Context) ([]*Admission, error) {
	return s.repo.ListAll(ctx)
}

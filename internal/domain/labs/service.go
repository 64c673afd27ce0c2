package labs

import (
	"context"
	"fmt"

	"github.com/akireview/akireview/internal/domain/admission"
)

// CaseSource resolves a case's admit time so series can be expressed in
// hours since admission.
type CaseSource interface {
	GetByCaseID(ctx context.Context, caseID string) (*admission.Admission, error)
}

// Series is the chart payload for one case: serum creatinine and urine
// output, each ordered by time.
type Series struct {
	SCr []Point `json:"scr"`
	UO  []Point `json:"uo"`
}

type Service struct {
	repo  LabRepository
	cases CaseSource
}

func NewService(repo LabRepository, cases CaseSource) *Service {
	return &Service{repo: repo, cases: cases}
}

func (s *Service) RecordEvent(ctx context.Context, ev *LabEvent) error {
	if err := validateEvent(ev); err != nil {
		return err
	}
	if _, err := s.cases.GetByCaseID(ctx, ev.CaseID); err != nil {
		return err
	}
	return s.repo.Create(ctx, ev)
}

func (s *Service) RecordEvents(ctx context.Context, events []*LabEvent) error {
	seen := map[string]bool{}
	for _, ev := range events {
		if err := validateEvent(ev); err != nil {
			return err
		}
		if !seen[ev.CaseID] {
			if _, err := s.cases.GetByCaseID(ctx, ev.CaseID); err != nil {
				return err
			}
			seen[ev.CaseID] = true
		}
	}
	return s.repo.BulkCreate(ctx, events)
}

// SeriesForCase returns the case's lab events split into chart series,
// with hours since admission populated when the case has an admit time.
func (s *Service) SeriesForCase(ctx context.Context, caseID string) (*Series, error) {
	a, err := s.cases.GetByCaseID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	events, err := s.repo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	scr, uo := SplitSeries(events)
	return &Series{
		SCr: WithHours(scr, a.AdmitTime),
		UO:  WithHours(uo, a.AdmitTime),
	}, nil
}

func (s *Service) ClearCase(ctx context.Context, caseID string) error {
	return s.repo.DeleteByCase(ctx, caseID)
}

func validateEvent(ev *LabEvent) error {
	if ev.CaseID == "" {
		return fmt.Errorf("case_id is required")
	}
	if ev.Kind == "" {
		return fmt.Errorf("kind is required")
	}
	if ev.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	return nil
}

package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akireview/akireview/internal/domain/admission"
	"github.com/akireview/akireview/internal/highlight"
)

// ErrStepOneRequired is returned when a step-2 save arrives before the
// reviewer has saved step 1 for the same case.
var ErrStepOneRequired = errors.New("step 1 must be saved before step 2")

// CaseSource is the slice of the admission domain the review flow needs:
// resolving one case's text and walking the full ordered case list.
type CaseSource interface {
	GetByCaseID(ctx context.Context, caseID string) (*admission.Admission, error)
	ListAll(ctx context.Context) ([]*admission.Admission, error)
}

// ResumeState restores an in-progress step: the live source text, the
// saved highlights reconciled against it, and the earlier answers.
type ResumeState struct {
	CaseID     string            `json:"case_id"`
	Step       int               `json:"step"`
	Text       string            `json:"text"`
	Highlights []highlight.Range `json:"highlights"`
	Response   *Response         `json:"response,omitempty"`
}

type Service struct {
	repo  ResponseRepository
	cases CaseSource
}

func NewService(repo ResponseRepository, cases CaseSource) *Service {
	return &Service{repo: repo, cases: cases}
}

// SaveStep1 records a first-pass answer. Highlights are normalized and
// rendered against the step-1 text before the markup is persisted.
func (s *Service) SaveStep1(ctx context.Context, reviewerID string, a Step1Answers) (*Response, error) {
	if reviewerID == "" {
		return nil, fmt.Errorf("reviewer_id is required")
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	adm, err := s.cases.GetByCaseID(ctx, a.CaseID)
	if err != nil {
		return nil, err
	}
	resp := &Response{
		RecordedAt:    time.Now().UTC(),
		ReviewerID:    reviewerID,
		CaseID:        a.CaseID,
		Step:          1,
		AKI:           a.AKI,
		HighlightHTML: highlight.ToHTML(adm.SummaryForStep(1), a.Highlights),
		Rationale:     a.Rationale,
		Confidence:    a.Confidence,
	}
	if err := s.repo.Upsert(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SaveStep2 records the chart-informed answer. It refuses to run ahead
// of step 1 and clears the etiology fields on a "No" judgment.
func (s *Service) SaveStep2(ctx context.Context, reviewerID string, a Step2Answers) (*Response, error) {
	if reviewerID == "" {
		return nil, fmt.Errorf("reviewer_id is required")
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	adm, err := s.cases.GetByCaseID(ctx, a.CaseID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByKey(ctx, reviewerID, a.CaseID, 1); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrStepOneRequired
		}
		return nil, err
	}
	if a.AKI == AKINo {
		a.Etiology, a.Stage, a.OnsetExplanation = "", "", ""
	}
	resp := &Response{
		RecordedAt:       time.Now().UTC(),
		ReviewerID:       reviewerID,
		CaseID:           a.CaseID,
		Step:             2,
		AKI:              a.AKI,
		HighlightHTML:    highlight.ToHTML(adm.SummaryForStep(2), a.Highlights),
		Confidence:       a.Confidence,
		Reasoning:        a.Reasoning,
		Etiology:         a.Etiology,
		Stage:            a.Stage,
		OnsetExplanation: a.OnsetExplanation,
	}
	if err := s.repo.Upsert(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Progress finds where a reviewer picks up: the first case in review
// order without a step-2 response. Step is 2 when step 1 is already
// saved for that case.
func (s *Service) Progress(ctx context.Context, reviewerID string) (*Progress, error) {
	cases, err := s.cases.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	steps, err := s.repo.StepsByReviewer(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	for i, adm := range cases {
		done := steps[adm.CaseID]
		if done[2] {
			continue
		}
		step := 1
		if done[1] {
			step = 2
		}
		return &Progress{
			CaseID:     adm.CaseID,
			CaseIndex:  i,
			Step:       step,
			TotalCases: len(cases),
		}, nil
	}
	return &Progress{CaseIndex: len(cases), TotalCases: len(cases), Completed: true}, nil
}

// Resume rebuilds the editing state for one (case, step): live text,
// highlights reconciled against it, and the saved answers if any.
func (s *Service) Resume(ctx context.Context, reviewerID, caseID string, step int) (*ResumeState, error) {
	if step != 1 && step != 2 {
		return nil, fmt.Errorf("step must be 1 or 2")
	}
	adm, err := s.cases.GetByCaseID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	state := &ResumeState{CaseID: caseID, Step: step, Text: adm.SummaryForStep(step)}
	resp, err := s.repo.GetByKey(ctx, reviewerID, caseID, step)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return state, nil
		}
		return nil, err
	}
	state.Response = resp
	state.Highlights = highlight.ReconcileHTML(resp.HighlightHTML, state.Text)
	return state, nil
}

func (s *Service) ListByReviewer(ctx context.Context, reviewerID string, limit, offset int) ([]*Response, int, error) {
	return s.repo.ListByReviewer(ctx, reviewerID, limit, offset)
}

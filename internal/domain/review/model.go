package review

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akireview/akireview/internal/highlight"
)

const (
	AKIYes = "Yes"
	AKINo  = "No"
)

// Response is one recorded answer for a (reviewer, case, step) triple.
// Re-saving the same triple replaces the earlier row.
type Response struct {
	ID               uuid.UUID `json:"id"`
	RecordedAt       time.Time `json:"recorded_at"`
	ReviewerID       string    `json:"reviewer_id"`
	CaseID           string    `json:"case_id"`
	Step             int       `json:"step"`
	AKI              string    `json:"aki"`
	HighlightHTML    string    `json:"highlight_html"`
	Rationale        string    `json:"rationale,omitempty"`
	Confidence       int       `json:"confidence"`
	Reasoning        string    `json:"reasoning,omitempty"`
	Etiology         string    `json:"aki_etiology,omitempty"`
	Stage            string    `json:"aki_stage,omitempty"`
	OnsetExplanation string    `json:"aki_onset_explanation,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Step1Answers is the blinded first-pass form: AKI judgment, free-text
// rationale and the supporting highlight spans.
type Step1Answers struct {
	CaseID     string            `json:"case_id"`
	AKI        string            `json:"aki"`
	Rationale  string            `json:"rationale"`
	Confidence int               `json:"confidence"`
	Highlights []highlight.Range `json:"highlights"`
}

// Step2Answers is the chart-informed second pass. Etiology, stage and
// onset explanation are only meaningful when AKI is "Yes".
type Step2Answers struct {
	CaseID           string            `json:"case_id"`
	AKI              string            `json:"aki"`
	Confidence       int               `json:"confidence"`
	Reasoning        string            `json:"reasoning"`
	Etiology         string            `json:"aki_etiology"`
	Stage            string            `json:"aki_stage"`
	OnsetExplanation string            `json:"aki_onset_explanation"`
	Highlights       []highlight.Range `json:"highlights"`
}

// Progress locates a reviewer in the case sequence: the first case
// without a completed step 2, or Completed when every case is done.
type Progress struct {
	CaseID     string `json:"case_id,omitempty"`
	CaseIndex  int    `json:"case_index"`
	Step       int    `json:"step"`
	TotalCases int    `json:"total_cases"`
	Completed  bool   `json:"completed"`
}

func validateCommon(caseID, aki string, confidence int) error {
	if caseID == "" {
		return fmt.Errorf("case_id is required")
	}
	if aki != AKIYes && aki != AKINo {
		return fmt.Errorf("aki must be %q or %q", AKIYes, AKINo)
	}
	if confidence < 1 || confidence > 5 {
		return fmt.Errorf("confidence must be between 1 and 5")
	}
	return nil
}

func (a Step1Answers) Validate() error {
	return validateCommon(a.CaseID, a.AKI, a.Confidence)
}

func (a Step2Answers) Validate() error {
	if err := validateCommon(a.CaseID, a.AKI, a.Confidence); err != nil {
		return err
	}
	if a.AKI == AKIYes {
		if a.Etiology == "" {
			return fmt.Errorf("aki_etiology is required when aki is Yes")
		}
		if a.Stage == "" {
			return fmt.Errorf("aki_stage is required when aki is Yes")
		}
		if a.OnsetExplanation == "" {
			return fmt.Errorf("aki_onset_explanation is required when aki is Yes")
		}
	}
	return nil
}

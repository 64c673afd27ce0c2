package admission

import (
	"time"

	"github.com/google/uuid"
)

// Admission is one discharge summary presented for review. CaseID is the
// stable human-facing key used by the UI and by recorded responses; the
// uuid primary key never leaves the database layer's own joins.
type Admission struct {
	ID           uuid.UUID  `json:"id"`
	CaseID       string     `json:"case_id"`
	Title        string     `json:"title"`
	HadmID       *string    `json:"hadm_id,omitempty"`
	SummaryStep1 string     `json:"summary_step1"`
	SummaryStep2 string     `json:"summary_step2"`
	WeightKg     *float64   `json:"weight_kg,omitempty"`
	AdmitTime    *time.Time `json:"admit_time,omitempty"`
	Position     int        `json:"position"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SummaryForStep returns the narrative shown at the given review step.
// Step 2 falls back to the step-1 text when no augmented summary was
// loaded for the case.
func (a *Admission) SummaryForStep(step int) string {
	if step == 2 && a.SummaryStep2 != "" {
		return a.SummaryStep2
	}
	return a.SummaryStep1
}

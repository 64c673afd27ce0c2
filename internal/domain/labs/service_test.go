package labs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/akireview/akireview/internal/domain/admission"
)

// -- Mocks --

type mockLabRepo struct {
	events []*LabEvent
}

func (m *mockLabRepo) Create(_ context.Context, ev *LabEvent) error {
	ev.ID = uuid.New()
	m.events = append(m.events, ev)
	return nil
}

func (m *mockLabRepo) BulkCreate(_ context.Context, events []*LabEvent) error {
	for _, ev := range events {
		ev.ID = uuid.New()
	}
	m.events = append(m.events, events...)
	return nil
}

func (m *mockLabRepo) ListByCase(_ context.Context, caseID string) ([]*LabEvent, error) {
	var result []*LabEvent
	for _, ev := range m.events {
		if ev.CaseID == caseID {
			result = append(result, ev)
		}
	}
	return result, nil
}

func (m *mockLabRepo) DeleteByCase(_ context.Context, caseID string) error {
	var keep []*LabEvent
	for _, ev := range m.events {
		if ev.CaseID != caseID {
			keep = append(keep, ev)
		}
	}
	m.events = keep
	return nil
}

type mockCaseSource struct {
	cases map[string]*admission.Admission
}

func (m *mockCaseSource) GetByCaseID(_ context.Context, caseID string) (*admission.Admission, error) {
	a, ok := m.cases[caseID]
	if !ok {
		return nil, admission.ErrNotFound
	}
	return a, nil
}

var admitTime = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestService() (*Service, *mockLabRepo) {
	repo := &mockLabRepo{}
	at := admitTime
	cases := &mockCaseSource{cases: map[string]*admission.Admission{
		"case_001": {CaseID: "case_001", AdmitTime: &at},
		"case_002": {CaseID: "case_002"},
	}}
	return NewService(repo, cases), repo
}

func ev(caseID, kind string, hoursAfterAdmit float64, value float64) *LabEvent {
	return &LabEvent{
		CaseID:    caseID,
		Kind:      kind,
		Timestamp: admitTime.Add(time.Duration(hoursAfterAdmit * float64(time.Hour))),
		Value:     value,
		Unit:      "mg/dL",
	}
}

// -- Tests --

func TestSplitSeries(t *testing.T) {
	events := []*LabEvent{
		ev("case_001", "uo", 2, 120),
		ev("case_001", "SCr", 6, 1.4),
		ev("case_001", "scr", 1, 0.9),
	}
	scr, uo := SplitSeries(events)
	if len(scr) != 2 || len(uo) != 1 {
		t.Fatalf("expected 2 scr and 1 uo, got %d and %d", len(scr), len(uo))
	}
	if !scr[0].Timestamp.Before(scr[1].Timestamp) {
		t.Error("expected scr series sorted by timestamp")
	}
	if scr[0].Value != 0.9 {
		t.Errorf("expected earliest scr first, got %v", scr[0].Value)
	}
}

func TestWithHours(t *testing.T) {
	at := admitTime
	points := WithHours([]*LabEvent{ev("case_001", "scr", 6.5, 1.4)}, &at)
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	if points[0].Hours == nil || *points[0].Hours != 6.5 {
		t.Errorf("expected 6.5 hours, got %v", points[0].Hours)
	}
}

func TestWithHours_NilAdmitTime(t *testing.T) {
	points := WithHours([]*LabEvent{ev("case_002", "scr", 6, 1.4)}, nil)
	if points[0].Hours != nil {
		t.Errorf("expected hours unset without admit time, got %v", *points[0].Hours)
	}
}

func TestSeriesForCase(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	svc.RecordEvent(ctx, ev("case_001", "scr", 1, 0.9))
	svc.RecordEvent(ctx, ev("case_001", "scr", 24, 1.8))
	svc.RecordEvent(ctx, ev("case_001", "uo", 3, 110))

	series, err := svc.SeriesForCase(ctx, "case_001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series.SCr) != 2 || len(series.UO) != 1 {
		t.Fatalf("expected 2 scr and 1 uo, got %d and %d", len(series.SCr), len(series.UO))
	}
	if series.SCr[1].Hours == nil || *series.SCr[1].Hours != 24 {
		t.Errorf("expected 24 hours on second scr point, got %v", series.SCr[1].Hours)
	}
}

func TestSeriesForCase_NoAdmitTime(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	svc.RecordEvent(ctx, ev("case_002", "scr", 2, 1.1))

	series, err := svc.SeriesForCase(ctx, "case_002")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.SCr[0].Hours != nil {
		t.Error("expected hours unset for case without admit time")
	}
}

func TestSeriesForCase_UnknownCase(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.SeriesForCase(context.Background(), "missing"); err == nil {
		t.Error("expected error for unknown case")
	}
}

func TestRecordEvent_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.RecordEvent(ctx, &LabEvent{Kind: "scr", Timestamp: admitTime}); err == nil {
		t.Error("expected error for missing case_id")
	}
	if err := svc.RecordEvent(ctx, &LabEvent{CaseID: "case_001", Timestamp: admitTime}); err == nil {
		t.Error("expected error for missing kind")
	}
	if err := svc.RecordEvent(ctx, &LabEvent{CaseID: "case_001", Kind: "scr"}); err == nil {
		t.Error("expected error for missing timestamp")
	}
	if err := svc.RecordEvent(ctx, ev("missing", "scr", 1, 1.0)); err == nil {
		t.Error("expected error for unknown case")
	}
}

func TestRecordEvents_Bulk(t *testing.T) {
	svc, repo := newTestService()
	events := []*LabEvent{
		ev("case_001", "scr", 1, 0.9),
		ev("case_001", "uo", 2, 100),
	}
	if err := svc.RecordEvents(context.Background(), events); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.events) != 2 {
		t.Errorf("expected 2 stored events, got %d", len(repo.events))
	}
}

func TestClearCase(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	svc.RecordEvent(ctx, ev("case_001", "scr", 1, 0.9))
	svc.RecordEvent(ctx, ev("case_002", "scr", 1, 1.1))

	if err := svc.ClearCase(ctx, "case_001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.events) != 1 || repo.events[0].CaseID != "case_002" {
		t.Errorf("expected only case_002 events to remain, got %d", len(repo.events))
	}
}

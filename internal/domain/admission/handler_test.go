package admission

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	h := NewHandler(newTestService())
	return h, echo.New()
}

func seedCase(h *Handler, caseID string) *Admission {
	a := &Admission{CaseID: caseID, SummaryStep1: "The patient was admitted."}
	h.svc.CreateAdmission(context.Background(), a)
	return a
}

func TestHandler_CreateCase(t *testing.T) {
	h, e := newTestHandler()
	body := `{"case_id":"case_001","summary_step1":"Admitted with AKI."}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateCase(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestHandler_CreateCase_MissingSummary(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"case_id":"case_001"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	if err := h.CreateCase(c); err == nil {
		t.Error("expected error for missing summary")
	}
}

func TestHandler_GetCase(t *testing.T) {
	h, e := newTestHandler()
	seedCase(h, "case_001")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("case_id")
	c.SetParamValues("case_001")

	if err := h.GetCase(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var got Admission
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if got.CaseID != "case_001" {
		t.Errorf("expected case_001, got %s", got.CaseID)
	}
}

func TestHandler_GetCase_NotFound(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("case_id")
	c.SetParamValues("missing")

	err := h.GetCase(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_GetSummary(t *testing.T) {
	h, e := newTestHandler()
	seedCase(h, "case_001")

	req := httptest.NewRequest(http.MethodGet, "/?step=1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("case_id")
	c.SetParamValues("case_001")

	if err := h.GetSummary(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got["text"] != "The patient was admitted." {
		t.Errorf("unexpected summary text: %v", got["text"])
	}
}

func TestHandler_GetSummary_InvalidStep(t *testing.T) {
	h, e := newTestHandler()
	seedCase(h, "case_001")

	req := httptest.NewRequest(http.MethodGet, "/?step=nine", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("case_id")
	c.SetParamValues("case_001")

	err := h.GetSummary(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_ListCases(t *testing.T) {
	h, e := newTestHandler()
	seedCase(h, "case_001")
	seedCase(h, "case_002")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListCases(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got struct {
		Total int `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Total != 2 {
		t.Errorf("expected total 2, got %d", got.Total)
	}
}

func TestHandler_UpdateCase(t *testing.T) {
	h, e := newTestHandler()
	seedCase(h, "case_001")

	body := `{"title":"Renamed","summary_step1":"Updated text."}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("case_id")
	c.SetParamValues("case_001")

	if err := h.UpdateCase(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := h.svc.GetByCaseID(context.Background(), "case_001")
	if got.SummaryStep1 != "Updated text." {
		t.Errorf("expected updated summary, got %q", got.SummaryStep1)
	}
}

func TestHandler_DeleteCase(t *testing.T) {
	h, e := newTestHandler()
	seedCase(h, "case_001")

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("case_id")
	c.SetParamValues("case_001")

	if err := h.DeleteCase(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if _, err := h.svc.GetByCaseID(context.Background(), "case_001"); err == nil {
		t.Error("expected case to be deleted")
	}
}

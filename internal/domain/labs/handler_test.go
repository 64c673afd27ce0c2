package labs

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
	svc, _ := newTestService()
	return NewHandler(svc), echo.New()
}

func TestHandler_GetCaseSeries(t *testing.T) {
	h, e := newTestHandler()
	h.svc.RecordEvent(context.Background(), ev("case_001", "scr", 1, 0.9))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("case_id")
	c.SetParamValues("case_001")

	if err := h.GetCaseSeries(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Series
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(got.SCr) != 1 {
		t.Errorf("expected 1 scr point, got %d", len(got.SCr))
	}
}

func TestHandler_GetCaseSeries_NotFound(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("case_id")
	c.SetParamValues("missing")

	err := h.GetCaseSeries(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_CreateEvent(t *testing.T) {
	h, e := newTestHandler()
	body := `{"case_id":"case_001","kind":"scr","timestamp":"2024-03-01T10:00:00Z","value":1.2,"unit":"mg/dL"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateEvent(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestHandler_CreateEvent_UnknownCase(t *testing.T) {
	h, e := newTestHandler()
	body := `{"case_id":"missing","kind":"scr","timestamp":"2024-03-01T10:00:00Z","value":1.2}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.CreateEvent(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_CreateEvents(t *testing.T) {
	h, e := newTestHandler()
	body := `[{"case_id":"case_001","kind":"scr","timestamp":"2024-03-01T10:00:00Z","value":1.2},
		{"case_id":"case_001","kind":"uo","timestamp":"2024-03-01T11:00:00Z","value":90}]`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateEvents(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var got map[string]int
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got["created"] != 2 {
		t.Errorf("expected created=2, got %d", got["created"])
	}
}

func TestHandler_ClearCase(t *testing.T) {
	h, e := newTestHandler()
	h.svc.RecordEvent(context.Background(), ev("case_001", "scr", 1, 0.9))

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("case_id")
	c.SetParamValues("case_001")

	if err := h.ClearCase(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

package reviewer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/akireview/akireview/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _ := newTestService()
	return NewHandler(svc), echo.New()
}

func TestHandler_SignIn(t *testing.T) {
	h, e := newTestHandler()
	body := `{"reviewer_id":"rev-42","display_name":"Dr. Osei"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.SignIn(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var got signInResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if got.Token == "" {
		t.Error("expected a session token")
	}
	if got.Reviewer == nil || got.Reviewer.ReviewerID != "rev-42" {
		t.Errorf("unexpected reviewer: %+v", got.Reviewer)
	}
}

func TestHandler_SignIn_BadHandle(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reviewer_id":"a"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.SignIn(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_GetSession(t *testing.T) {
	h, e := newTestHandler()
	h.svc.SignIn(context.Background(), "rev-42", "Dr. Osei")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), auth.ReviewerIDKey, "rev-42")
	ctx = context.WithValue(ctx, auth.UserRolesKey, []string{"reviewer"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req.WithContext(ctx), rec)

	if err := h.GetSession(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got["reviewer_id"] != "rev-42" {
		t.Errorf("expected rev-42 session, got %v", got["reviewer_id"])
	}
}

func TestHandler_GetSession_UnknownIdentityEchoesClaims(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), auth.ReviewerIDKey, "dev-reviewer")
	ctx = context.WithValue(ctx, auth.UserRolesKey, []string{"admin", "reviewer"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req.WithContext(ctx), rec)

	if err := h.GetSession(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_GetSession_NoIdentity(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.GetSession(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

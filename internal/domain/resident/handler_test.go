package resident

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type noopAudit struct{}

func (noopAudit) Record(_ context.Context, _, _, _ string) {}

func newTestHandler() *Handler {
	return NewHandler(NewService(newMockRepo()), noopAudit{})
}

func TestHandlerCreate(t *testing.T) {
	h := newTestHandler()
	e := echo.New()

	body := `{"name":"Alice Smith","date_of_birth":"1940-05-01","level_of_care":"Personal Care"}`
	req := httptest.NewRequest(http.MethodPost, "/residents", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var got Resident
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.Name != "Alice Smith" {
		t.Errorf("expected Alice Smith, got %s", got.Name)
	}
}

func TestHandlerCreate_InvalidBody(t *testing.T) {
	h := newTestHandler()
	e := echo.New()

	body := `{"name":"","date_of_birth":"1940-05-01"}`
	req := httptest.NewRequest(http.MethodPost, "/residents", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandlerGet_BadID(t *testing.T) {
	h := newTestHandler()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/residents/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandlerGet_NotFound(t *testing.T) {
	h := newTestHandler()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/residents/7e6c9b3e-46b3-4ae5-9ac2-2ec44fc42be1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7e6c9b3e-46b3-4ae5-9ac2-2ec44fc42be1")

	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandlerList(t *testing.T) {
	h := newTestHandler()
	e := echo.New()

	// Seed two residents through the create endpoint
	for _, body := range []string{
		`{"name":"Alice Smith","date_of_birth":"1940-05-01"}`,
		`{"name":"Bob Jones","date_of_birth":"1935-11-20"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/residents", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		if err := h.Create(e.NewContext(req, rec)); err != nil {
			t.Fatalf("seed create: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/residents", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("expected total 2, got %d", resp.Total)
	}
}

func TestHandlerCount(t *testing.T) {
	h := newTestHandler()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/residents/count", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Count(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["count"] != 0 {
		t.Errorf("expected count 0, got %d", resp["count"])
	}
}

package medication

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type noopAudit struct{}

func (noopAudit) Record(_ context.Context, _, _, _ string) {}

func TestHandlerCreate(t *testing.T) {
	repo := newMockRepo()
	h := NewHandler(NewService(repo), noopAudit{})
	e := echo.New()

	residentID := uuid.New()
	body := fmt.Sprintf(`{"resident_id":%q,"medication_name":"Aspirin","dosage":"81mg",
		"medication_type":"Scheduled","time_slots":["Morning","Evening"]}`, residentID)
	req := httptest.NewRequest(http.MethodPost, "/medications", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var got Medication
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.MedicationName != "Aspirin" || len(got.TimeSlots) != 2 {
		t.Errorf("medication %+v", got)
	}
}

func TestHandlerCreate_ScheduledWithoutSlots(t *testing.T) {
	h := NewHandler(NewService(newMockRepo()), noopAudit{})
	e := echo.New()

	body := fmt.Sprintf(`{"resident_id":%q,"medication_name":"Aspirin","medication_type":"Scheduled"}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/medications", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandlerDiscontinue(t *testing.T) {
	repo := newMockRepo()
	residentID := uuid.New()
	repo.residentNames["Snoop Dawg"] = residentID
	med := &Medication{
		ID: uuid.New(), ResidentID: residentID,
		MedicationName: "Aspirin", MedicationType: TypeScheduled,
	}
	repo.store[med.ID] = med
	h := NewHandler(NewService(repo), noopAudit{})
	e := echo.New()

	call := func() map[string]bool {
		body := `{"resident_name":"Snoop Dawg","medication_name":"Aspirin","date":"2023-12-15"}`
		req := httptest.NewRequest(http.MethodPost, "/medications/discontinue", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		if err := h.Discontinue(e.NewContext(req, rec)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var resp map[string]bool
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response: %v", err)
		}
		return resp
	}

	if resp := call(); !resp["applied"] {
		t.Error("first discontinue should apply")
	}
	if resp := call(); resp["applied"] {
		t.Error("second discontinue should be a no-op")
	}
}

func TestHandlerGet_NotFound(t *testing.T) {
	h := NewHandler(NewService(newMockRepo()), noopAudit{})
	e := echo.New()

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/medications/"+id, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)

	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}
